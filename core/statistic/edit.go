package statistic

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/school"
)

var (
	// errors
	ErrSessionNotFound = errors.New("edit session not found")
	ErrSaveInProgress  = errors.New("a save is in progress")
	ErrInvalidState    = errors.New("edit session is not open")
	ErrUnknownRow      = errors.New("score row is not part of this edit session")
)

type SessionState string

// Session states
const (
	StateOpen   SessionState = "open"
	StateSaving SessionState = "saving"
	StateClosed SessionState = "closed"
)

// Save stages
const (
	StageRates  = "rates"
	StageScores = "scores"
)

// SaveError reports a failed save stage. Nothing after that stage was attempted.
type SaveError struct {
	Stage string
	Err   error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("saving %s failed: %v", e.Stage, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// RowFailure is a score row that could not be saved.
type RowFailure struct {
	RowID int64  `json:"rowId"`
	Error string `json:"error"`
}

// PartialSaveError reports the score rows that failed while the others were saved.
type PartialSaveError struct {
	Total  int
	Failed []RowFailure
}

func (e *PartialSaveError) Error() string {
	return fmt.Sprintf("%d of %d score rows failed to save", len(e.Failed), e.Total)
}

// FailedIDs returns the ids of the failed rows.
func (e *PartialSaveError) FailedIDs() []int64 {
	ids := make([]int64, len(e.Failed))
	for i, f := range e.Failed {
		ids[i] = f.RowID
	}
	return ids
}

// StagedScore is an editable copy of a score row.
type StagedScore struct {
	ID          int64   `json:"id"`
	SubjectID   int64   `json:"subjectId"`
	SubjectName string  `json:"subjectName"`
	HK1         float64 `json:"hk1"`
	HK2         float64 `json:"hk2"`
	Project     float64 `json:"project"`
}

func (ss StagedScore) Patch() school.ScorePatch {
	return school.ScorePatch{HK1: ss.HK1, HK2: ss.HK2, Project: ss.Project}
}

// SessionSnapshot is a read-only copy of a Session.
type SessionSnapshot struct {
	ID        string        `json:"id"`
	StudentID int64         `json:"studentId"`
	State     SessionState  `json:"state"`
	Rates     school.Rates  `json:"rates"`
	Scores    []StagedScore `json:"scores"`
	Error     string        `json:"error,omitempty"`
}

// SaveResult describes a completed save attempt.
type SaveResult struct {
	Student school.Student `json:"student"`
	Saved   []int64        `json:"saved"`
	Failed  []RowFailure   `json:"failed"`
}

// Session holds the staged edits of one student until they are saved or discarded.
type Session struct {
	ID        string
	StudentID int64

	editor *Editor

	mu      sync.Mutex
	state   SessionState
	rates   school.Rates
	scores  []StagedScore
	lastErr error
}

func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := SessionSnapshot{
		ID:        s.ID,
		StudentID: s.StudentID,
		State:     s.state,
		Rates:     s.rates,
		Scores:    append([]StagedScore(nil), s.scores...),
	}
	if s.lastErr != nil {
		snap.Error = s.lastErr.Error()
	}
	return snap
}

// checkOpen must be called with s.mu held.
func (s *Session) checkOpen() error {
	switch s.state {
	case StateOpen:
		return nil
	case StateSaving:
		return ErrSaveInProgress
	default:
		return ErrInvalidState
	}
}

// StageRates replaces the staged rates. Values are clamped when saved.
func (s *Session) StageRates(rates school.Rates) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.rates = rates
	return nil
}

// StageScore replaces the staged components of one score row.
func (s *Session) StageScore(rowID int64, patch school.ScorePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	for i := range s.scores {
		if s.scores[i].ID == rowID {
			s.scores[i].HK1 = patch.HK1
			s.scores[i].HK2 = patch.HK2
			s.scores[i].Project = patch.Project
			return nil
		}
	}
	return ErrUnknownRow
}

// Save persists the staged rates, then every staged score row.
//
// A rates failure stops the save, returns a *SaveError and reopens the session
// with its staged edits kept. Otherwise every score row is attempted even when
// some fail, saved rows are written to the cache and the session closes; the
// rows that failed are listed by a *PartialSaveError.
func (s *Session) Save(ctx context.Context) (SaveResult, error) {
	s.mu.Lock()
	if err := s.checkOpen(); err != nil {
		s.mu.Unlock()
		return SaveResult{}, err
	}
	s.state = StateSaving
	s.lastErr = nil
	rates := s.rates.Clamp()
	scores := append([]StagedScore(nil), s.scores...)
	s.mu.Unlock()

	e := s.editor
	student, err := e.repo.PatchStudentRates(ctx, s.StudentID, rates)
	if err != nil {
		err = &SaveError{Stage: StageRates, Err: err}
		e.logger.Error("saving rates failed", map[string]interface{}{"student": s.StudentID}, err)
		s.reopen(err)
		return SaveResult{}, err
	}
	if student.ID != s.StudentID {
		// the backend answered without the record, cache what was sent
		student, _ = e.store.Student(s.StudentID)
		student.ID, student.Rates = s.StudentID, rates.Rates()
	}
	if !e.store.PutStudent(student) {
		e.logger.Warning("saved student is not cached", map[string]interface{}{"student": s.StudentID})
	}

	result := SaveResult{Student: student, Saved: []int64{}, Failed: []RowFailure{}}
	errs := make([]error, len(scores))
	var g errgroup.Group
	for i, sc := range scores {
		i, sc := i, sc
		g.Go(func() error {
			updated, err := e.repo.PatchStudentScore(ctx, sc.ID, sc.Patch())
			if err != nil {
				errs[i] = err
				return nil
			}
			if updated.ID != sc.ID {
				updated = school.StudentScore{
					ID:        sc.ID,
					StudentID: s.StudentID,
					SubjectID: sc.SubjectID,
					HK1:       sc.HK1,
					HK2:       sc.HK2,
					Project:   sc.Project,
				}
			}
			if !e.store.PutScore(updated) {
				e.logger.Warning("saved score row is not cached", map[string]interface{}{"student": s.StudentID, "row": sc.ID})
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, sc := range scores {
		if errs[i] != nil {
			result.Failed = append(result.Failed, RowFailure{RowID: sc.ID, Error: errs[i].Error()})
		} else {
			result.Saved = append(result.Saved, sc.ID)
		}
	}

	var partial *PartialSaveError
	if len(result.Failed) > 0 {
		partial = &PartialSaveError{Total: len(scores), Failed: result.Failed}
	}

	s.mu.Lock()
	s.state = StateClosed
	if partial != nil {
		s.lastErr = partial
	}
	s.mu.Unlock()
	e.remove(s)

	if partial != nil {
		e.logger.Warning("score rows failed to save", map[string]interface{}{
			"student": s.StudentID,
			"failed":  partial.FailedIDs(),
		})
		return result, partial
	}
	e.logger.Info("edit session saved", map[string]interface{}{"student": s.StudentID, "rows": len(scores)})
	return result, nil
}

func (s *Session) reopen(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateOpen
	s.lastErr = err
}

// Editor is the registry of open edit sessions, at most one per student.
type Editor struct {
	repo   school.Repository
	store  *school.Store
	logger core.Logger
	tag    language.Tag

	mu        sync.Mutex
	sessions  map[string]*Session
	byStudent map[int64]*Session
}

func NewEditor(repo school.Repository, store *school.Store, logger core.Logger, tag language.Tag) *Editor {
	return &Editor{
		repo:      repo,
		store:     store,
		logger:    logger,
		tag:       tag,
		sessions:  make(map[string]*Session),
		byStudent: make(map[int64]*Session),
	}
}

// Open starts an edit session seeded from the cache. An open session of the
// same student is replaced; one that is saving is left alone and ErrSaveInProgress is returned.
func (e *Editor) Open(studentID int64) (*Session, error) {
	snap := e.store.Snapshot()
	detail, err := BuildDetail(snap, BuildIndex(snap), studentID, core.Labels{}, e.tag)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if prev, ok := e.byStudent[studentID]; ok {
		prev.mu.Lock()
		saving := prev.state == StateSaving
		if !saving {
			prev.state = StateClosed
		}
		prev.mu.Unlock()
		if saving {
			return nil, ErrSaveInProgress
		}
		delete(e.sessions, prev.ID)
	}

	sess := &Session{
		ID:        uuid.NewString(),
		StudentID: studentID,
		editor:    e,
		state:     StateOpen,
		rates:     detail.Student.Rates.Rates(),
		scores:    make([]StagedScore, 0, len(detail.Scores)),
	}
	for _, row := range detail.Scores {
		sess.scores = append(sess.scores, StagedScore{
			ID:          row.ID,
			SubjectID:   row.SubjectID,
			SubjectName: row.SubjectName,
			HK1:         row.HK1,
			HK2:         row.HK2,
			Project:     row.Project,
		})
	}
	e.sessions[sess.ID] = sess
	e.byStudent[studentID] = sess
	return sess, nil
}

// Session returns the session with the given ID.
func (e *Editor) Session(id string) (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sess, ok := e.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Close discards a session and its staged edits.
func (e *Editor) Close(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, ok := e.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state == StateSaving {
		return ErrSaveInProgress
	}
	sess.state = StateClosed
	delete(e.sessions, id)
	if e.byStudent[sess.StudentID] == sess {
		delete(e.byStudent, sess.StudentID)
	}
	return nil
}

func (e *Editor) remove(sess *Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sessions[sess.ID] == sess {
		delete(e.sessions, sess.ID)
	}
	if e.byStudent[sess.StudentID] == sess {
		delete(e.byStudent, sess.StudentID)
	}
}

// Len returns the number of live sessions.
func (e *Editor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sessions)
}
