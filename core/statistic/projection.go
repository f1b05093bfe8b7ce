package statistic

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"gonum.org/v1/gonum/stat"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/school"
)

// SortKey is a sortable numeric column of Row.
type SortKey string

// Sort keys
const (
	SortTotal       SortKey = "total"
	SortHK1         SortKey = "hk1"
	SortHK2         SortKey = "hk2"
	SortProject     SortKey = "project"
	SortAttendance  SortKey = "attendance"
	SortHomework    SortKey = "homework"
	SortPreparation SortKey = "preparation"
)

var (
	sortKeyAliases = map[string]SortKey{
		"total":       SortTotal,
		"hk1":         SortHK1,
		"term1":       SortHK1,
		"hk2":         SortHK2,
		"term2":       SortHK2,
		"project":     SortProject,
		"attendance":  SortAttendance,
		"homework":    SortHomework,
		"preparation": SortPreparation,
	}

	// errors
	ErrInvalidSortKey = errors.New("invalid sort key")
)

// ParseSortKey accepts the column names, plus term1/term2 for hk1/hk2.
func ParseSortKey(s string) (SortKey, error) {
	if key, ok := sortKeyAliases[core.CleanString(s, true /* lower */)]; ok {
		return key, nil
	}
	return "", ErrInvalidSortKey
}

func (key SortKey) value(r Row) float64 {
	switch key {
	case SortHK1:
		return r.HK1
	case SortHK2:
		return r.HK2
	case SortProject:
		return r.Project
	case SortAttendance:
		return float64(r.Attendance)
	case SortHomework:
		return float64(r.Homework)
	case SortPreparation:
		return float64(r.Preparation)
	default:
		return r.Total
	}
}

// Query selects and orders Rows.
type Query struct {
	Search    string     // case-insensitive, matched against name OR code
	ClassID   null.Int64 // invalid: all classes
	Sort      SortKey
	Ascending bool
}

// DefaultQuery sorts by total, best first.
func DefaultQuery() Query {
	return Query{Sort: SortTotal}
}

// Averages are the column means over a View's rows.
type Averages struct {
	HK1         float64 `json:"hk1"`
	HK2         float64 `json:"hk2"`
	Project     float64 `json:"project"`
	Total       float64 `json:"total"`
	Attendance  float64 `json:"attendance"`
	Homework    float64 `json:"homework"`
	Preparation float64 `json:"preparation"`
}

// View is a filtered and sorted projection of the Rows.
// Averages is nil when no row matched, which is not the same as zero averages.
type View struct {
	Rows     []Row     `json:"rows"`
	Count    int       `json:"count"`
	Averages *Averages `json:"averages"`
}

// Project filters and sorts rows. The input slice is not modified.
func Project(rows []Row, q Query) View {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	filtered := make([]Row, 0, len(rows))
	for _, r := range rows {
		if search != "" &&
			!strings.Contains(strings.ToLower(r.Name), search) &&
			!strings.Contains(strings.ToLower(r.StudentCode), search) {
			continue
		}
		if q.ClassID.Valid && (!r.ClassID.Valid || r.ClassID.Int64 != q.ClassID.Int64) {
			continue
		}
		filtered = append(filtered, r)
	}

	key := q.Sort
	if key == "" {
		key = SortTotal
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		if q.Ascending {
			return key.value(filtered[i]) < key.value(filtered[j])
		}
		return key.value(filtered[i]) > key.value(filtered[j])
	})

	return View{Rows: filtered, Count: len(filtered), Averages: averages(filtered)}
}

func averages(rows []Row) *Averages {
	if len(rows) == 0 {
		return nil
	}
	column := func(value func(Row) float64) float64 {
		xs := make([]float64, len(rows))
		for i, r := range rows {
			xs[i] = value(r)
		}
		return school.Round2(stat.Mean(xs, nil))
	}
	return &Averages{
		HK1:         column(func(r Row) float64 { return r.HK1 }),
		HK2:         column(func(r Row) float64 { return r.HK2 }),
		Project:     column(func(r Row) float64 { return r.Project }),
		Total:       column(func(r Row) float64 { return r.Total }),
		Attendance:  column(func(r Row) float64 { return float64(r.Attendance) }),
		Homework:    column(func(r Row) float64 { return float64(r.Homework) }),
		Preparation: column(func(r Row) float64 { return float64(r.Preparation) }),
	}
}

// ClassOption is one choice of the class filter.
type ClassOption struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// ClassOptions lists every class ordered by ID.
func ClassOptions(classes []school.ClassItem) []ClassOption {
	opts := make([]ClassOption, 0, len(classes))
	for _, cl := range classes {
		opts = append(opts, ClassOption{ID: cl.ID, Label: cl.Name})
	}
	sort.SliceStable(opts, func(i, j int) bool { return opts[i].ID < opts[j].ID })
	return opts
}
