package statistic

import (
	"fmt"

	"github.com/volatiletech/null/v8"
	"gonum.org/v1/gonum/stat"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/school"
)

// Index joins the collections by foreign key.
type Index struct {
	ScoresByStudent map[int64][]school.StudentScore // rows keep the order they were received in
	ClassNames      map[int64]string
	SubjectNames    map[int64]string
}

func BuildIndex(c school.Collections) Index {
	idx := Index{
		ScoresByStudent: make(map[int64][]school.StudentScore, len(c.Students)),
		ClassNames:      make(map[int64]string, len(c.Classes)),
		SubjectNames:    make(map[int64]string, len(c.Subjects)),
	}
	for _, sc := range c.StudentScores {
		idx.ScoresByStudent[sc.StudentID] = append(idx.ScoresByStudent[sc.StudentID], sc)
	}
	for _, cl := range c.Classes {
		idx.ClassNames[cl.ID] = cl.Name // last one wins
	}
	for _, sub := range c.Subjects {
		idx.SubjectNames[sub.ID] = sub.Name
	}
	return idx
}

// ClassName resolves a class label: its name, "Class #<id>" when unknown, or noClass when unset.
func (idx Index) ClassName(classID null.Int64, noClass string) string {
	if !classID.Valid {
		return noClass
	}
	if name, ok := idx.ClassNames[classID.Int64]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("Class #%d", classID.Int64)
}

// SubjectName resolves a subject label, "#<id>" when unknown.
func (idx Index) SubjectName(subjectID int64) string {
	if name, ok := idx.SubjectNames[subjectID]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("#%d", subjectID)
}

// RateBands classify each rate of a Row.
type RateBands struct {
	Attendance  string `json:"attendance"`
	Homework    string `json:"homework"`
	Preparation string `json:"preparation"`
}

// Row is the per-student aggregation shown in the statistics table. It is never persisted.
type Row struct {
	ID            int64      `json:"id"`
	StudentCode   string     `json:"studentCode"`
	Name          string     `json:"name"`
	ClassID       null.Int64 `json:"classId"`
	ClassName     string     `json:"className"`
	SubjectsCount int        `json:"subjectsCount"`

	// term averages over the student's subjects
	HK1     float64 `json:"hk1"`
	HK2     float64 `json:"hk2"`
	Project float64 `json:"project"`
	// Total is the sum of the three averages, not a sum over subjects.
	Total float64 `json:"total"`

	Attendance  int       `json:"attendance"`
	Homework    int       `json:"homework"`
	Preparation int       `json:"preparation"`
	Bands       RateBands `json:"bands"`
}

// BuildRows derives one Row per student, in student order.
func BuildRows(c school.Collections, idx Index, labels core.Labels) []Row {
	rows := make([]Row, 0, len(c.Students))
	for _, st := range c.Students {
		rows = append(rows, buildRow(st, idx, labels))
	}
	return rows
}

func buildRow(st school.Student, idx Index, labels core.Labels) Row {
	scores := idx.ScoresByStudent[st.ID]
	hk1 := make([]float64, len(scores))
	hk2 := make([]float64, len(scores))
	project := make([]float64, len(scores))
	for i, sc := range scores {
		hk1[i], hk2[i], project[i] = sc.HK1, sc.HK2, sc.Project
	}
	avgHK1, avgHK2, avgProject := mean(hk1), mean(hk2), mean(project)

	rates := st.Rates.Clamp()
	return Row{
		ID:            st.ID,
		StudentCode:   st.DisplayCode(),
		Name:          st.DisplayName(labels.Unnamed),
		ClassID:       st.ClassID,
		ClassName:     idx.ClassName(st.ClassID, labels.NoClass),
		SubjectsCount: len(scores),
		HK1:           school.Round2(avgHK1),
		HK2:           school.Round2(avgHK2),
		Project:       school.Round2(avgProject),
		Total:         school.Round2(avgHK1 + avgHK2 + avgProject),
		Attendance:    rates.Attendance,
		Homework:      rates.Homework,
		Preparation:   rates.Preparation,
		Bands: RateBands{
			Attendance:  school.Band(float64(rates.Attendance)),
			Homework:    school.Band(float64(rates.Homework)),
			Preparation: school.Band(float64(rates.Preparation)),
		},
	}
}

// mean is 0 for an empty list.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}
