package school

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Collections as named by the record backend.
const (
	CollectionStudents      = "students"
	CollectionSubjects      = "subjects"
	CollectionStudentScores = "studentScores"
	CollectionClasses       = "classes"
)

var (
	// errors
	ErrNotFound = errors.New("record not found")
)

// Repository is a record backend holding the four collections.
type Repository interface {
	ListStudents(ctx context.Context) ([]Student, error)
	ListSubjects(ctx context.Context) ([]Subject, error)
	ListStudentScores(ctx context.Context) ([]StudentScore, error)
	ListClasses(ctx context.Context) ([]ClassItem, error)
	// PatchStudentRates replaces the student's rates and returns the updated Student.
	// A zero Student means the backend did not send the record back.
	PatchStudentRates(ctx context.Context, id int64, rates Percentages) (Student, error)
	// PatchStudentScore replaces the three score components and returns the updated row,
	// or a zero StudentScore when the backend did not send it back.
	PatchStudentScore(ctx context.Context, id int64, patch ScorePatch) (StudentScore, error)
	// CreateStudentScore stores a new row; the backend assigns its ID.
	CreateStudentScore(ctx context.Context, score StudentScore) (StudentScore, error)
}

// StatusError is returned by backends that answered with a non-OK status.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
}

// StatusCode returns the backend status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// LoadError reports which collection failed during a load.
type LoadError struct {
	Collection string
	Status     int // 0 when the backend never answered
	Err        error
}

func (e *LoadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s fetch failed: %d", e.Collection, e.Status)
	}
	return fmt.Sprintf("%s fetch failed: %v", e.Collection, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
