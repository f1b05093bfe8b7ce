package school

import (
	"fmt"

	"github.com/volatiletech/null/v8"
)

// Student is a student record as stored by the record backend.
type Student struct {
	ID      int64      `json:"id"`
	Code    string     `json:"studentCode"`
	Name    string     `json:"name"`
	ClassID null.Int64 `json:"classId"` // invalid: not assigned to a class
	Rates   Rates      `json:"rates"`
}

// DisplayCode returns the student code, or a code derived from the ID when missing.
func (s Student) DisplayCode() string {
	if s.Code != "" {
		return s.Code
	}
	return fmt.Sprintf("SV%03d", s.ID)
}

// DisplayName returns the student name, or `unnamed` when missing.
func (s Student) DisplayName(unnamed string) string {
	if s.Name != "" {
		return s.Name
	}
	return unnamed
}

// Rates are a student's percentage metrics as received; they may fall outside [0,100].
type Rates struct {
	Attendance  float64 `json:"attendance"`
	Homework    float64 `json:"homework"`
	Preparation float64 `json:"preparation"`
}

// Clamp returns the rates clamped to integers in [0,100].
func (r Rates) Clamp() Percentages {
	return Percentages{
		Attendance:  ClampPercent(r.Attendance),
		Homework:    ClampPercent(r.Homework),
		Preparation: ClampPercent(r.Preparation),
	}
}

// Percentages are clamped rates; this is also the shape persisted by the backend.
type Percentages struct {
	Attendance  int `json:"attendance"`
	Homework    int `json:"homework"`
	Preparation int `json:"preparation"`
}

// Rates converts the percentages back to raw rates.
func (p Percentages) Rates() Rates {
	return Rates{
		Attendance:  float64(p.Attendance),
		Homework:    float64(p.Homework),
		Preparation: float64(p.Preparation),
	}
}

type Subject struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// StudentScore holds the scores of one student in one subject.
// There is one row per (student, subject) pair by convention only.
type StudentScore struct {
	ID        int64   `json:"id"`
	StudentID int64   `json:"studentId"`
	SubjectID int64   `json:"subjectId"`
	HK1       float64 `json:"hk1"`
	HK2       float64 `json:"hk2"`
	Project   float64 `json:"project"`
}

// Patch returns the score components of the row.
func (sc StudentScore) Patch() ScorePatch {
	return ScorePatch{HK1: sc.HK1, HK2: sc.HK2, Project: sc.Project}
}

// ScorePatch is the body of a partial score update.
type ScorePatch struct {
	HK1     float64 `json:"hk1"`
	HK2     float64 `json:"hk2"`
	Project float64 `json:"project"`
}

type ClassItem struct {
	ID     int64  `json:"id"`
	Code   string `json:"classCode,omitempty"`
	Name   string `json:"name"`
	Status string `json:"status,omitempty"`
}

// Collections are the four collections loaded together.
type Collections struct {
	Students      []Student      `json:"students"`
	Subjects      []Subject      `json:"subjects"`
	StudentScores []StudentScore `json:"studentScores"`
	Classes       []ClassItem    `json:"classes"`
}

// Clone returns a deep copy of c.
func (c Collections) Clone() Collections {
	return Collections{
		Students:      append([]Student(nil), c.Students...),
		Subjects:      append([]Subject(nil), c.Subjects...),
		StudentScores: append([]StudentScore(nil), c.StudentScores...),
		Classes:       append([]ClassItem(nil), c.Classes...),
	}
}
