package statistic

import (
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/scorebook/core"
)

func newValidate() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate, translator
}

func TestViewFilter(t *testing.T) {
	validate, translator := newValidate()

	tests := []struct {
		name    string
		filter  ViewFilter
		want    Query
		wantErr []core.FieldError
	}{
		{
			name:   "defaults",
			filter: ViewFilter{},
			want:   Query{Sort: SortTotal},
		},
		{
			name:   "all params",
			filter: ViewFilter{Search: " An ", Class: "10", Ordering: "term1"},
			want:   Query{Search: "An", ClassID: null.Int64From(10), Sort: SortHK1, Ascending: true},
		},
		{
			name:   "descending, first field wins",
			filter: ViewFilter{Ordering: "-attendance,hk2"},
			want:   Query{Sort: SortAttendance},
		},
		{
			name:    "bad class",
			filter:  ViewFilter{Class: "10A"},
			wantErr: []core.FieldError{{Field: "class", Error: "class must be a valid number"}},
		},
		{
			name:    "class overflows int64",
			filter:  ViewFilter{Class: "99999999999999999999"},
			wantErr: []core.FieldError{{Field: "class", Error: "class must be a valid number"}},
		},
		{
			name:    "decimal class",
			filter:  ViewFilter{Class: "1.5"},
			wantErr: []core.FieldError{{Field: "class", Error: "class must be a valid number"}},
		},
		{
			name:    "bad ordering",
			filter:  ViewFilter{Ordering: "-total,name"},
			wantErr: []core.FieldError{{Field: "ordering", Error: "invalid ordering field"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate(validate)
			if tt.wantErr != nil {
				var verrs validator.ValidationErrors
				require.ErrorAs(t, err, &verrs)
				var verr *core.ValidationError
				require.ErrorAs(t, core.TranslateValidationErrors(verrs, translator), &verr)
				assert.Equal(t, tt.wantErr, verr.Fields)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, tt.filter.Query())
		})
	}
}

func TestEditRates_Validate(t *testing.T) {
	validate, _ := newValidate()
	f := func(v float64) *float64 { return &v }

	err := EditRates{Attendance: f(0), Homework: f(150), Preparation: f(-1)}.Validate(validate)
	assert.NoError(t, err, "zero and out of range values are accepted, they are clamped on save")

	err = EditRates{Attendance: f(1)}.Validate(validate)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
}

func TestEditScore_Patch(t *testing.T) {
	validate, _ := newValidate()
	f := func(v float64) *float64 { return &v }

	es := EditScore{HK1: f(8), HK2: f(0), Project: f(9.5)}
	require.NoError(t, es.Validate(validate))
	assert.Equal(t, 9.5, es.Patch().Project)

	assert.Error(t, EditScore{HK1: f(8)}.Validate(validate))
}
