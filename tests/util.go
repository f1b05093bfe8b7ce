// Package testutil holds fixtures and fakes shared by the package tests.
package testutil

import (
	"context"
	"sync"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/scorebook/core/school"
	"github.com/trezcool/scorebook/storage/database/inmem"
)

// Fixture returns a small school:
//   - An (SV001, class 10A): Math 8 / 7.5 / 8.5, rates 90 / 80 / 60
//   - Binh (SV002, class 10B): Math 5 / 6 / 7 and Văn 9 / 9 / 9, rates 120 / -5 / 55
//   - student 3 without code, name, class or scores
func Fixture() school.Collections {
	return school.Collections{
		Students: []school.Student{
			{ID: 1, Code: "SV001", Name: "An", ClassID: null.Int64From(10), Rates: school.Rates{Attendance: 90, Homework: 80, Preparation: 60}},
			{ID: 2, Code: "SV002", Name: "Binh", ClassID: null.Int64From(11), Rates: school.Rates{Attendance: 120, Homework: -5, Preparation: 55}},
			{ID: 3},
		},
		Subjects: []school.Subject{
			{ID: 1, Name: "Math"},
			{ID: 2, Name: "Văn"},
			{ID: 3, Name: "Anh"},
		},
		StudentScores: []school.StudentScore{
			{ID: 1, StudentID: 1, SubjectID: 1, HK1: 8, HK2: 7.5, Project: 8.5},
			{ID: 2, StudentID: 2, SubjectID: 1, HK1: 5, HK2: 6, Project: 7},
			{ID: 3, StudentID: 2, SubjectID: 2, HK1: 9, HK2: 9, Project: 9},
		},
		Classes: []school.ClassItem{
			{ID: 11, Name: "10B"},
			{ID: 10, Name: "10A"},
		},
	}
}

// NewMemoryRepository returns an in-memory repository seeded with c.
func NewMemoryRepository(c school.Collections) (*inmemdb.DB, school.Repository) {
	db := inmemdb.Open()
	db.Seed(c)
	return db, inmemdb.NewSchoolRepository(db)
}

// FlakyRepository wraps a Repository and fails the calls it was told to fail.
type FlakyRepository struct {
	school.Repository

	mu           sync.Mutex
	listErrs     map[string]error
	ratesErr     error
	scoreErrs    map[int64]error
	createErr    error
	stripIDs     bool
	Listed       []string
	PatchedRates []int64
	PatchedRows  []int64
}

func NewFlakyRepository(repo school.Repository) *FlakyRepository {
	return &FlakyRepository{
		Repository: repo,
		listErrs:   make(map[string]error),
		scoreErrs:  make(map[int64]error),
	}
}

func (r *FlakyRepository) FailList(collection string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listErrs[collection] = err
}

func (r *FlakyRepository) FailRates(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ratesErr = err
}

func (r *FlakyRepository) FailScore(rowID int64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scoreErrs[rowID] = err
}

func (r *FlakyRepository) FailCreate(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createErr = err
}

// StripIDs makes the patch calls answer with records without an id, like a
// backend that replies with an empty or partial body.
func (r *FlakyRepository) StripIDs() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stripIDs = true
}

// Heal clears every injected failure.
func (r *FlakyRepository) Heal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listErrs = make(map[string]error)
	r.scoreErrs = make(map[int64]error)
	r.ratesErr, r.createErr = nil, nil
	r.stripIDs = false
}

// listErr records the fetch of collection and returns its injected failure.
func (r *FlakyRepository) listErr(collection string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Listed = append(r.Listed, collection)
	return r.listErrs[collection]
}

func (r *FlakyRepository) ListStudents(ctx context.Context) ([]school.Student, error) {
	if err := r.listErr(school.CollectionStudents); err != nil {
		return nil, err
	}
	return r.Repository.ListStudents(ctx)
}

func (r *FlakyRepository) ListSubjects(ctx context.Context) ([]school.Subject, error) {
	if err := r.listErr(school.CollectionSubjects); err != nil {
		return nil, err
	}
	return r.Repository.ListSubjects(ctx)
}

func (r *FlakyRepository) ListStudentScores(ctx context.Context) ([]school.StudentScore, error) {
	if err := r.listErr(school.CollectionStudentScores); err != nil {
		return nil, err
	}
	return r.Repository.ListStudentScores(ctx)
}

func (r *FlakyRepository) ListClasses(ctx context.Context) ([]school.ClassItem, error) {
	if err := r.listErr(school.CollectionClasses); err != nil {
		return nil, err
	}
	return r.Repository.ListClasses(ctx)
}

func (r *FlakyRepository) PatchStudentRates(ctx context.Context, id int64, rates school.Percentages) (school.Student, error) {
	r.mu.Lock()
	r.PatchedRates = append(r.PatchedRates, id)
	err, strip := r.ratesErr, r.stripIDs
	r.mu.Unlock()
	if err != nil {
		return school.Student{}, err
	}
	st, err := r.Repository.PatchStudentRates(ctx, id, rates)
	if strip {
		st = school.Student{}
	}
	return st, err
}

func (r *FlakyRepository) PatchStudentScore(ctx context.Context, id int64, patch school.ScorePatch) (school.StudentScore, error) {
	r.mu.Lock()
	r.PatchedRows = append(r.PatchedRows, id)
	err, strip := r.scoreErrs[id], r.stripIDs
	r.mu.Unlock()
	if err != nil {
		return school.StudentScore{}, err
	}
	sc, err := r.Repository.PatchStudentScore(ctx, id, patch)
	if strip {
		sc = school.StudentScore{}
	}
	return sc, err
}

func (r *FlakyRepository) CreateStudentScore(ctx context.Context, score school.StudentScore) (school.StudentScore, error) {
	r.mu.Lock()
	err := r.createErr
	r.mu.Unlock()
	if err != nil {
		return school.StudentScore{}, err
	}
	return r.Repository.CreateStudentScore(ctx, score)
}
