package inmemdb

import (
	"context"

	"github.com/trezcool/scorebook/core/school"
)

type schoolRepository struct {
	db *DB
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) ListStudents(context.Context) ([]school.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]school.Student{}, repo.db.data.Students...), nil
}

func (repo *schoolRepository) ListSubjects(context.Context) ([]school.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]school.Subject{}, repo.db.data.Subjects...), nil
}

func (repo *schoolRepository) ListStudentScores(context.Context) ([]school.StudentScore, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]school.StudentScore{}, repo.db.data.StudentScores...), nil
}

func (repo *schoolRepository) ListClasses(context.Context) ([]school.ClassItem, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]school.ClassItem{}, repo.db.data.Classes...), nil
}

func (repo *schoolRepository) PatchStudentRates(_ context.Context, id int64, rates school.Percentages) (school.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for i := range repo.db.data.Students {
		if st := &repo.db.data.Students[i]; st.ID == id {
			st.Rates = rates.Rates()
			return *st, nil
		}
	}
	return school.Student{}, school.ErrNotFound
}

func (repo *schoolRepository) PatchStudentScore(_ context.Context, id int64, patch school.ScorePatch) (school.StudentScore, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for i := range repo.db.data.StudentScores {
		if sc := &repo.db.data.StudentScores[i]; sc.ID == id {
			sc.HK1, sc.HK2, sc.Project = patch.HK1, patch.HK2, patch.Project
			return *sc, nil
		}
	}
	return school.StudentScore{}, school.ErrNotFound
}

func (repo *schoolRepository) CreateStudentScore(_ context.Context, score school.StudentScore) (school.StudentScore, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	score.ID = repo.db.nextPK(school.CollectionStudentScores)
	repo.db.data.StudentScores = append(repo.db.data.StudentScores, score)
	return score, nil
}
