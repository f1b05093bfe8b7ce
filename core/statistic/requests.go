package statistic

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/school"
)

// ViewFilter holds the query params of a statistics view.
type ViewFilter struct {
	Search   string `query:"search"`
	Class    string `query:"class" validate:"omitempty,int64"`
	Ordering string `query:"ordering" validate:"omitempty,ordering"`
}

func (vf *ViewFilter) Validate(validate *validator.Validate) error {
	vf.Search = core.CleanString(vf.Search)
	vf.Class = core.CleanString(vf.Class)
	return validate.Struct(vf)
}

// Query converts a validated filter. Only the first ordering field is used.
func (vf ViewFilter) Query() Query {
	q := DefaultQuery()
	q.Search = vf.Search
	if id, err := strconv.ParseInt(vf.Class, 10, 64); err == nil {
		q.ClassID = null.Int64From(id)
	}
	if ords := core.ParseOrderings(vf.Ordering); len(ords) > 0 {
		if key, err := ParseSortKey(ords[0].Field); err == nil {
			q.Sort = key
			q.Ascending = ords[0].Ascending
		}
	}
	return q
}

// EditRates is the body staging new rates.
type EditRates struct {
	Attendance  *float64 `json:"attendance" validate:"required"`
	Homework    *float64 `json:"homework" validate:"required"`
	Preparation *float64 `json:"preparation" validate:"required"`
}

func (er EditRates) Validate(validate *validator.Validate) error { return validate.Struct(er) }

func (er EditRates) Rates() school.Rates {
	return school.Rates{Attendance: *er.Attendance, Homework: *er.Homework, Preparation: *er.Preparation}
}

// EditScore is the body staging the components of a score row.
type EditScore struct {
	HK1     *float64 `json:"hk1" validate:"required"`
	HK2     *float64 `json:"hk2" validate:"required"`
	Project *float64 `json:"project" validate:"required"`
}

func (es EditScore) Validate(validate *validator.Validate) error { return validate.Struct(es) }

func (es EditScore) Patch() school.ScorePatch {
	return school.ScorePatch{HK1: *es.HK1, HK2: *es.HK2, Project: *es.Project}
}
