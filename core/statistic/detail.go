package statistic

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/school"
)

var (
	// errors
	ErrStudentNotFound = errors.New("student not found")
)

// DetailRow is one subject of a student's drill-down.
type DetailRow struct {
	ID          int64   `json:"id"`
	SubjectID   int64   `json:"subjectId"`
	SubjectName string  `json:"subjectName"`
	HK1         float64 `json:"hk1"`
	HK2         float64 `json:"hk2"`
	Project     float64 `json:"project"`
	// ComponentSum is hk1 + hk2 + project of this row, unrounded.
	ComponentSum float64 `json:"componentSum"`
}

// DetailStudent is the header of a drill-down, with the same fallbacks and
// clamped rates as the student's Row.
type DetailStudent struct {
	ID          int64              `json:"id"`
	StudentCode string             `json:"studentCode"`
	Name        string             `json:"name"`
	ClassID     null.Int64         `json:"classId"`
	ClassName   string             `json:"className"`
	Rates       school.Percentages `json:"rates"`
}

type Detail struct {
	Student DetailStudent `json:"student"`
	Scores  []DetailRow   `json:"scores"`
}

// BuildDetail joins a student's score rows with their subject names, sorted by
// subject name in the collation order of tag.
func BuildDetail(c school.Collections, idx Index, studentID int64, labels core.Labels, tag language.Tag) (Detail, error) {
	var (
		st    school.Student
		found bool
	)
	for _, s := range c.Students {
		if s.ID == studentID {
			st, found = s, true
			break
		}
	}
	if !found {
		return Detail{}, ErrStudentNotFound
	}

	scores := idx.ScoresByStudent[studentID]
	rows := make([]DetailRow, 0, len(scores))
	for _, sc := range scores {
		rows = append(rows, DetailRow{
			ID:           sc.ID,
			SubjectID:    sc.SubjectID,
			SubjectName:  idx.SubjectName(sc.SubjectID),
			HK1:          sc.HK1,
			HK2:          sc.HK2,
			Project:      sc.Project,
			ComponentSum: sc.HK1 + sc.HK2 + sc.Project,
		})
	}

	col := collate.New(tag)
	sort.SliceStable(rows, func(i, j int) bool {
		return col.CompareString(rows[i].SubjectName, rows[j].SubjectName) < 0
	})
	header := DetailStudent{
		ID:          st.ID,
		StudentCode: st.DisplayCode(),
		Name:        st.DisplayName(labels.Unnamed),
		ClassID:     st.ClassID,
		ClassName:   idx.ClassName(st.ClassID, labels.NoClass),
		Rates:       st.Rates.Clamp(),
	}
	return Detail{Student: header, Scores: rows}, nil
}

// ParseLocale returns the language tag for locale, falling back to Vietnamese.
func ParseLocale(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		return language.Vietnamese
	}
	return tag
}
