// Package restrepo reads and patches the school collections over the backend's REST API.
package restrepo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/school"
)

type repository struct {
	baseURL string
	client  *http.Client
}

var _ school.Repository = (*repository)(nil)

// NewRepository returns a Repository talking to conf.Backend.BaseURL.
func NewRepository(conf *core.Config) school.Repository {
	return NewRepositoryWithClient(conf.Backend.BaseURL, &http.Client{Timeout: conf.Backend.Timeout})
}

func NewRepositoryWithClient(baseURL string, client *http.Client) school.Repository {
	return &repository{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (repo *repository) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encoding request body")
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, repo.baseURL+path, rdr)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := repo.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s %s", method, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &school.StatusError{Method: method, Path: path, Code: resp.StatusCode}
	}
	return data, nil
}

// noContent reports a successful reply without a record, eg: 204 No Content.
func noContent(data []byte) bool {
	return len(bytes.TrimSpace(data)) == 0
}

func (repo *repository) ListStudents(ctx context.Context) ([]school.Student, error) {
	data, err := repo.do(ctx, http.MethodGet, "/"+school.CollectionStudents, nil)
	if err != nil {
		return nil, err
	}
	return school.DecodeStudents(data)
}

func (repo *repository) ListSubjects(ctx context.Context) ([]school.Subject, error) {
	data, err := repo.do(ctx, http.MethodGet, "/"+school.CollectionSubjects, nil)
	if err != nil {
		return nil, err
	}
	return school.DecodeSubjects(data)
}

func (repo *repository) ListStudentScores(ctx context.Context) ([]school.StudentScore, error) {
	data, err := repo.do(ctx, http.MethodGet, "/"+school.CollectionStudentScores, nil)
	if err != nil {
		return nil, err
	}
	return school.DecodeStudentScores(data)
}

func (repo *repository) ListClasses(ctx context.Context) ([]school.ClassItem, error) {
	data, err := repo.do(ctx, http.MethodGet, "/"+school.CollectionClasses, nil)
	if err != nil {
		return nil, err
	}
	return school.DecodeClasses(data)
}

func (repo *repository) PatchStudentRates(ctx context.Context, id int64, rates school.Percentages) (school.Student, error) {
	path := fmt.Sprintf("/%s/%d", school.CollectionStudents, id)
	data, err := repo.do(ctx, http.MethodPatch, path, map[string]interface{}{"rates": rates})
	if err != nil || noContent(data) {
		return school.Student{}, err
	}
	return school.DecodeStudent(data)
}

func (repo *repository) PatchStudentScore(ctx context.Context, id int64, patch school.ScorePatch) (school.StudentScore, error) {
	path := fmt.Sprintf("/%s/%d", school.CollectionStudentScores, id)
	data, err := repo.do(ctx, http.MethodPatch, path, patch)
	if err != nil || noContent(data) {
		return school.StudentScore{}, err
	}
	return school.DecodeStudentScore(data)
}

func (repo *repository) CreateStudentScore(ctx context.Context, score school.StudentScore) (school.StudentScore, error) {
	body := map[string]interface{}{
		"studentId": score.StudentID,
		"subjectId": score.SubjectID,
		"hk1":       score.HK1,
		"hk2":       score.HK2,
		"project":   score.Project,
	}
	data, err := repo.do(ctx, http.MethodPost, "/"+school.CollectionStudentScores, body)
	if err != nil {
		return school.StudentScore{}, err
	}
	return school.DecodeStudentScore(data)
}
