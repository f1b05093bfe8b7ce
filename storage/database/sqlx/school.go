package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/school"
)

type studentRow struct {
	ID          int64      `db:"id"`
	Code        string     `db:"student_code"`
	Name        string     `db:"name"`
	ClassID     null.Int64 `db:"class_id"`
	Attendance  float64    `db:"attendance"`
	Homework    float64    `db:"homework"`
	Preparation float64    `db:"preparation"`
}

func (r studentRow) student() school.Student {
	return school.Student{
		ID:      r.ID,
		Code:    r.Code,
		Name:    r.Name,
		ClassID: r.ClassID,
		Rates:   school.Rates{Attendance: r.Attendance, Homework: r.Homework, Preparation: r.Preparation},
	}
}

type scoreRow struct {
	ID        int64   `db:"id"`
	StudentID int64   `db:"student_id"`
	SubjectID int64   `db:"subject_id"`
	HK1       float64 `db:"hk1"`
	HK2       float64 `db:"hk2"`
	Project   float64 `db:"project"`
}

func (r scoreRow) score() school.StudentScore {
	return school.StudentScore(r)
}

const (
	studentColumns = "id, student_code, name, class_id, attendance, homework, preparation"
	scoreColumns   = "id, student_id, subject_id, hk1, hk2, project"
)

// wrapErr wraps err with msg. A closed database cannot serve again, so it becomes a shutdown error.
func wrapErr(err error, msg string) error {
	if errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "database is closed") {
		return errors.Wrap(core.NewShutdownError(err.Error()), msg)
	}
	return errors.Wrap(err, msg)
}

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(db *sqlx.DB) school.Repository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) ListStudents(ctx context.Context) ([]school.Student, error) {
	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT "+studentColumns+" FROM students ORDER BY id"); err != nil {
		return nil, wrapErr(err, "selecting students")
	}
	students := make([]school.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.student())
	}
	return students, nil
}

func (repo *schoolRepository) ListSubjects(ctx context.Context) ([]school.Subject, error) {
	subjects := []school.Subject{}
	if err := repo.db.SelectContext(ctx, &subjects, "SELECT id, name FROM subjects ORDER BY id"); err != nil {
		return nil, wrapErr(err, "selecting subjects")
	}
	return subjects, nil
}

func (repo *schoolRepository) ListStudentScores(ctx context.Context) ([]school.StudentScore, error) {
	var rows []scoreRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT "+scoreColumns+" FROM student_scores ORDER BY id"); err != nil {
		return nil, wrapErr(err, "selecting student scores")
	}
	scores := make([]school.StudentScore, 0, len(rows))
	for _, r := range rows {
		scores = append(scores, r.score())
	}
	return scores, nil
}

func (repo *schoolRepository) ListClasses(ctx context.Context) ([]school.ClassItem, error) {
	classes := []school.ClassItem{}
	q := "SELECT id, class_code AS code, name, status FROM classes ORDER BY id"
	if err := repo.db.SelectContext(ctx, &classes, q); err != nil {
		return nil, wrapErr(err, "selecting classes")
	}
	return classes, nil
}

func (repo *schoolRepository) PatchStudentRates(ctx context.Context, id int64, rates school.Percentages) (school.Student, error) {
	q := repo.db.Rebind("UPDATE students SET attendance = ?, homework = ?, preparation = ? WHERE id = ? RETURNING " + studentColumns)
	var row studentRow
	err := repo.db.GetContext(ctx, &row, q, rates.Attendance, rates.Homework, rates.Preparation, id)
	if errors.Is(err, sql.ErrNoRows) {
		return school.Student{}, school.ErrNotFound
	}
	if err != nil {
		return school.Student{}, wrapErr(err, "updating student rates")
	}
	return row.student(), nil
}

func (repo *schoolRepository) PatchStudentScore(ctx context.Context, id int64, patch school.ScorePatch) (school.StudentScore, error) {
	q := repo.db.Rebind("UPDATE student_scores SET hk1 = ?, hk2 = ?, project = ? WHERE id = ? RETURNING " + scoreColumns)
	var row scoreRow
	err := repo.db.GetContext(ctx, &row, q, patch.HK1, patch.HK2, patch.Project, id)
	if errors.Is(err, sql.ErrNoRows) {
		return school.StudentScore{}, school.ErrNotFound
	}
	if err != nil {
		return school.StudentScore{}, wrapErr(err, "updating student score")
	}
	return row.score(), nil
}

func (repo *schoolRepository) CreateStudentScore(ctx context.Context, score school.StudentScore) (school.StudentScore, error) {
	q := repo.db.Rebind("INSERT INTO student_scores (student_id, subject_id, hk1, hk2, project) VALUES (?, ?, ?, ?, ?) RETURNING " + scoreColumns)
	var row scoreRow
	if err := repo.db.GetContext(ctx, &row, q, score.StudentID, score.SubjectID, score.HK1, score.HK2, score.Project); err != nil {
		return school.StudentScore{}, wrapErr(err, "inserting student score")
	}
	return row.score(), nil
}

// Import inserts every record of c, keeping their ids, in one transaction.
func Import(ctx context.Context, db *sqlx.DB, c school.Collections) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for _, cl := range c.Classes {
		if _, err := tx.ExecContext(ctx, tx.Rebind("INSERT INTO classes (id, class_code, name, status) VALUES (?, ?, ?, ?)"),
			cl.ID, cl.Code, cl.Name, cl.Status); err != nil {
			return errors.Wrapf(err, "inserting class %d", cl.ID)
		}
	}
	for _, sub := range c.Subjects {
		if _, err := tx.ExecContext(ctx, tx.Rebind("INSERT INTO subjects (id, name) VALUES (?, ?)"),
			sub.ID, sub.Name); err != nil {
			return errors.Wrapf(err, "inserting subject %d", sub.ID)
		}
	}
	for _, st := range c.Students {
		if _, err := tx.ExecContext(ctx, tx.Rebind("INSERT INTO students ("+studentColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)"),
			st.ID, st.Code, st.Name, st.ClassID, st.Rates.Attendance, st.Rates.Homework, st.Rates.Preparation); err != nil {
			return errors.Wrapf(err, "inserting student %d", st.ID)
		}
	}
	for _, sc := range c.StudentScores {
		if _, err := tx.ExecContext(ctx, tx.Rebind("INSERT INTO student_scores ("+scoreColumns+") VALUES (?, ?, ?, ?, ?, ?)"),
			sc.ID, sc.StudentID, sc.SubjectID, sc.HK1, sc.HK2, sc.Project); err != nil {
			return errors.Wrapf(err, "inserting student score %d", sc.ID)
		}
	}
	if db.DriverName() == "postgres" {
		for _, table := range []string{"classes", "subjects", "students", "student_scores"} {
			q := "SELECT setval(pg_get_serial_sequence('" + table + "', 'id'), COALESCE(MAX(id), 0) + 1, false) FROM " + table
			if _, err := tx.ExecContext(ctx, q); err != nil {
				return errors.Wrapf(err, "resetting %s sequence", table)
			}
		}
	}
	return errors.Wrap(tx.Commit(), "committing import")
}
