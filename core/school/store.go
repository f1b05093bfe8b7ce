package school

import (
	"sync"
	"time"
)

// Store is the in-memory cache of the loaded collections.
// The Loader replaces it wholesale; edit sessions overwrite single records after a successful save.
type Store struct {
	mu       sync.RWMutex
	data     Collections
	loaded   bool
	loadedAt time.Time
}

func NewStore() *Store {
	return &Store{}
}

// Replace swaps in a freshly loaded dataset.
func (s *Store) Replace(c Collections) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = c.Clone()
	s.loaded = true
	s.loadedAt = time.Now().UTC()
}

// Loaded reports whether a dataset was ever loaded and when.
func (s *Store) Loaded() (bool, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded, s.loadedAt
}

// Snapshot returns a copy of the cached collections.
func (s *Store) Snapshot() Collections {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

func (s *Store) Student(id int64) (Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.data.Students {
		if st.ID == id {
			return st, true
		}
	}
	return Student{}, false
}

// PutStudent overwrites the cached student with the same ID. It reports false if there is none.
func (s *Store) PutStudent(st Student) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.Students {
		if s.data.Students[i].ID == st.ID {
			s.data.Students[i] = st
			return true
		}
	}
	return false
}

// PutScore overwrites the cached score row with the same ID. It reports false if there is none.
func (s *Store) PutScore(sc StudentScore) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.StudentScores {
		if s.data.StudentScores[i].ID == sc.ID {
			s.data.StudentScores[i] = sc
			return true
		}
	}
	return false
}

// AddScores appends newly created score rows.
func (s *Store) AddScores(scores ...StudentScore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.StudentScores = append(s.data.StudentScores, scores...)
}
