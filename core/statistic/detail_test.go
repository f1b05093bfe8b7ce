package statistic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"golang.org/x/text/language"

	"github.com/trezcool/scorebook/core/school"
	"github.com/trezcool/scorebook/tests"
)

func TestBuildDetail(t *testing.T) {
	c := testutil.Fixture()

	d, err := BuildDetail(c, BuildIndex(c), 2, labels, language.Vietnamese)
	require.NoError(t, err)

	assert.Equal(t, DetailStudent{
		ID:          2,
		StudentCode: "SV002",
		Name:        "Binh",
		ClassID:     null.Int64From(11),
		ClassName:   "10B",
		Rates:       school.Percentages{Attendance: 100, Homework: 0, Preparation: 55},
	}, d.Student)
	assert.Equal(t, []DetailRow{
		{ID: 2, SubjectID: 1, SubjectName: "Math", HK1: 5, HK2: 6, Project: 7, ComponentSum: 18},
		{ID: 3, SubjectID: 2, SubjectName: "Văn", HK1: 9, HK2: 9, Project: 9, ComponentSum: 27},
	}, d.Scores)
}

func TestBuildDetail_collation(t *testing.T) {
	c := school.Collections{
		Students: []school.Student{{ID: 1}},
		Subjects: []school.Subject{{ID: 1, Name: "Toán"}, {ID: 2, Name: "Địa"}, {ID: 3, Name: "Dân"}, {ID: 4, Name: "Anh"}},
		StudentScores: []school.StudentScore{
			{ID: 1, StudentID: 1, SubjectID: 1},
			{ID: 2, StudentID: 1, SubjectID: 2},
			{ID: 3, StudentID: 1, SubjectID: 3},
			{ID: 4, StudentID: 1, SubjectID: 4},
			{ID: 5, StudentID: 1, SubjectID: 9},
		},
	}

	d, err := BuildDetail(c, BuildIndex(c), 1, labels, language.Vietnamese)
	require.NoError(t, err)

	names := make([]string, len(d.Scores))
	for i, row := range d.Scores {
		names[i] = row.SubjectName
	}
	assert.Equal(t, []string{"#9", "Anh", "Dân", "Địa", "Toán"}, names)
}

func TestBuildDetail_noScores(t *testing.T) {
	c := testutil.Fixture()

	d, err := BuildDetail(c, BuildIndex(c), 3, labels, language.Vietnamese)
	require.NoError(t, err)
	assert.Equal(t, DetailStudent{
		ID:          3,
		StudentCode: "SV003",
		Name:        "Chưa có tên",
		ClassName:   "Chưa có lớp",
	}, d.Student)
	assert.Empty(t, d.Scores)
}

func TestBuildDetail_unknownStudent(t *testing.T) {
	c := testutil.Fixture()

	_, err := BuildDetail(c, BuildIndex(c), 42, labels, language.Vietnamese)
	assert.Equal(t, ErrStudentNotFound, err)
}

func TestParseLocale(t *testing.T) {
	assert.Equal(t, language.Vietnamese, ParseLocale("vi"))
	assert.Equal(t, language.English, ParseLocale("en"))
	assert.Equal(t, language.Vietnamese, ParseLocale("not a locale!"))
}
