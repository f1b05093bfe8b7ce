package inmemdb

import (
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/scorebook/core/school"
)

// DB keeps the four collections in memory, in insertion order.
type DB struct {
	mutex  sync.RWMutex
	data   school.Collections
	lastPK map[string]int64
}

func Open() *DB {
	return &DB{lastPK: make(map[string]int64)}
}

// Seed replaces the contents of db.
func (db *DB) Seed(c school.Collections) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.data = c.Clone()
	db.lastPK = map[string]int64{
		school.CollectionStudents:      0,
		school.CollectionSubjects:      0,
		school.CollectionStudentScores: 0,
		school.CollectionClasses:       0,
	}
	for _, st := range db.data.Students {
		db.bumpPK(school.CollectionStudents, st.ID)
	}
	for _, sub := range db.data.Subjects {
		db.bumpPK(school.CollectionSubjects, sub.ID)
	}
	for _, sc := range db.data.StudentScores {
		db.bumpPK(school.CollectionStudentScores, sc.ID)
	}
	for _, cl := range db.data.Classes {
		db.bumpPK(school.CollectionClasses, cl.ID)
	}
}

func (db *DB) bumpPK(collection string, id int64) {
	if id > db.lastPK[collection] {
		db.lastPK[collection] = id
	}
}

func (db *DB) nextPK(collection string) int64 {
	db.lastPK[collection]++
	return db.lastPK[collection]
}

// SeedFile seeds db from a db.json file.
func (db *DB) SeedFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading seed file")
	}
	c, err := school.DecodeCollections(data)
	if err != nil {
		return errors.Wrap(err, "decoding seed file")
	}
	db.Seed(c)
	return nil
}

// Dump returns a copy of every collection.
func (db *DB) Dump() school.Collections {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return db.data.Clone()
}
