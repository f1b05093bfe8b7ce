package restrepo

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/school"
)

type recorded struct {
	method string
	path   string
	body   map[string]interface{}
}

type recorder struct {
	mu    sync.Mutex
	calls []recorded
}

func (rec *recorder) Calls() []recorded {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]recorded(nil), rec.calls...)
}

func setup(t *testing.T, routes map[string]string) (school.Repository, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := recorded{method: r.Method, path: r.URL.Path}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &call.body)
		}
		rec.mu.Lock()
		rec.calls = append(rec.calls, call)
		rec.mu.Unlock()

		payload, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, payload)
	}))
	t.Cleanup(srv.Close)

	conf := core.NewTestConfig()
	conf.Backend.BaseURL = srv.URL + "/"
	return NewRepository(conf), rec
}

func TestRepository_lists(t *testing.T) {
	repo, _ := setup(t, map[string]string{
		"GET /students":      `[{"id":1,"studentCode":"SV001","name":"An","classId":"10","rates":{"attendance":"90"}}]`,
		"GET /subjects":      `[{"id":1,"name":"Math"}]`,
		"GET /studentScores": `[{"id":1,"studentId":1,"subjectId":1,"hk1":8}, 5]`,
		"GET /classes":       `{"not":"an array"}`,
	})
	ctx := context.Background()

	students, err := repo.ListStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []school.Student{{ID: 1, Code: "SV001", Name: "An", ClassID: null.Int64From(10), Rates: school.Rates{Attendance: 90}}}, students)

	subjects, err := repo.ListSubjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []school.Subject{{ID: 1, Name: "Math"}}, subjects)

	scores, err := repo.ListStudentScores(ctx)
	require.NoError(t, err)
	assert.Equal(t, []school.StudentScore{{ID: 1, StudentID: 1, SubjectID: 1, HK1: 8}}, scores)

	classes, err := repo.ListClasses(ctx)
	require.NoError(t, err)
	assert.Empty(t, classes)
}

func TestRepository_statusError(t *testing.T) {
	repo, _ := setup(t, nil)

	_, err := repo.ListStudents(context.Background())

	var se *school.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, "/students", se.Path)
	assert.Equal(t, http.StatusNotFound, school.StatusCode(err))
}

func TestRepository_transportError(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Backend.BaseURL = "http://127.0.0.1:1"
	repo := NewRepository(conf)

	_, err := repo.ListClasses(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, school.StatusCode(err))
}

func TestRepository_patches(t *testing.T) {
	repo, rec := setup(t, map[string]string{
		"PATCH /students/2":      `{"id":2,"name":"Binh","rates":{"attendance":100,"homework":0,"preparation":55}}`,
		"PATCH /studentScores/3": `{"id":3,"studentId":2,"subjectId":2,"hk1":10,"hk2":9,"project":8}`,
		"POST /studentScores":    `{"id":7,"studentId":2,"subjectId":3,"hk1":0,"hk2":0,"project":0}`,
	})
	ctx := context.Background()

	st, err := repo.PatchStudentRates(ctx, 2, school.Percentages{Attendance: 100, Homework: 0, Preparation: 55})
	require.NoError(t, err)
	assert.Equal(t, school.Rates{Attendance: 100, Preparation: 55}, st.Rates)

	sc, err := repo.PatchStudentScore(ctx, 3, school.ScorePatch{HK1: 10, HK2: 9, Project: 8})
	require.NoError(t, err)
	assert.Equal(t, 10.0, sc.HK1)

	created, err := repo.CreateStudentScore(ctx, school.StudentScore{StudentID: 2, SubjectID: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)

	assert.Equal(t, []recorded{
		{method: http.MethodPatch, path: "/students/2", body: map[string]interface{}{
			"rates": map[string]interface{}{"attendance": 100.0, "homework": 0.0, "preparation": 55.0},
		}},
		{method: http.MethodPatch, path: "/studentScores/3", body: map[string]interface{}{
			"hk1": 10.0, "hk2": 9.0, "project": 8.0,
		}},
		{method: http.MethodPost, path: "/studentScores", body: map[string]interface{}{
			"studentId": 2.0, "subjectId": 3.0, "hk1": 0.0, "hk2": 0.0, "project": 0.0,
		}},
	}, rec.Calls())
}

func TestRepository_patches_emptyBody(t *testing.T) {
	repo, rec := setup(t, map[string]string{
		"PATCH /students/2":      "",
		"PATCH /studentScores/3": " \n",
	})
	ctx := context.Background()

	st, err := repo.PatchStudentRates(ctx, 2, school.Percentages{Attendance: 100, Preparation: 55})
	require.NoError(t, err, "an empty 2xx reply is not a decode failure")
	assert.Equal(t, school.Student{}, st)

	sc, err := repo.PatchStudentScore(ctx, 3, school.ScorePatch{HK1: 10})
	require.NoError(t, err)
	assert.Equal(t, school.StudentScore{}, sc)

	assert.Len(t, rec.Calls(), 2)
}
