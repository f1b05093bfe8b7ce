package school

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/volatiletech/null/v8"
)

// DecodeError is returned when a backend payload is not valid JSON at all.
type DecodeError struct {
	Collection string
	Err        error
}

func (e *DecodeError) Error() string {
	return "decoding " + e.Collection + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

type fields map[string]json.RawMessage

// decodeObjects returns the objects of a JSON array.
// A payload that is not an array yields no objects; array items that are not objects are skipped.
func decodeObjects(collection string, data []byte) ([]fields, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &DecodeError{Collection: collection, Err: err}
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &DecodeError{Collection: collection, Err: err}
	}
	objs := make([]fields, 0, len(items))
	for _, item := range items {
		if obj, ok := decodeObject(item); ok {
			objs = append(objs, obj)
		}
	}
	return objs, nil
}

func decodeObject(raw json.RawMessage) (fields, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var obj fields
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// parseNumber accepts JSON numbers and numeric strings. Blank strings count as 0.
func parseNumber(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}

	var f float64
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, true
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case 't', 'f', 'n', '[', '{':
		return 0, false
	default:
		if err := json.Unmarshal(raw, &f); err != nil {
			return 0, false
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func (obj fields) number(key string) float64 {
	f, _ := parseNumber(obj[key])
	return f
}

func (obj fields) id(key string) int64 {
	return int64(math.Trunc(obj.number(key)))
}

func (obj fields) text(key string) string {
	raw := bytes.TrimSpace(obj[key])
	if len(raw) == 0 {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return ""
	}
	if _, ok := parseNumber(raw); ok {
		return string(raw)
	}
	return ""
}

// optionalID treats absent, null and blank values as unset; anything else set but unparsable is 0.
func (obj fields) optionalID(key string) null.Int64 {
	raw, ok := obj[key]
	if !ok {
		return null.Int64{}
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return null.Int64{}
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) == "" {
			return null.Int64{}
		}
	}
	f, _ := parseNumber(raw)
	return null.Int64From(int64(math.Trunc(f)))
}

func studentFromFields(obj fields) Student {
	st := Student{
		ID:      obj.id("id"),
		Code:    obj.text("studentCode"),
		Name:    obj.text("name"),
		ClassID: obj.optionalID("classId"),
	}
	if rates, ok := decodeObject(obj["rates"]); ok {
		st.Rates = Rates{
			Attendance:  rates.number("attendance"),
			Homework:    rates.number("homework"),
			Preparation: rates.number("preparation"),
		}
	}
	return st
}

func scoreFromFields(obj fields) StudentScore {
	return StudentScore{
		ID:        obj.id("id"),
		StudentID: obj.id("studentId"),
		SubjectID: obj.id("subjectId"),
		HK1:       obj.number("hk1"),
		HK2:       obj.number("hk2"),
		Project:   obj.number("project"),
	}
}

// DecodeStudents parses a students payload, coercing malformed fields to safe defaults.
func DecodeStudents(data []byte) ([]Student, error) {
	objs, err := decodeObjects(CollectionStudents, data)
	if err != nil {
		return nil, err
	}
	students := make([]Student, 0, len(objs))
	for _, obj := range objs {
		students = append(students, studentFromFields(obj))
	}
	return students, nil
}

// DecodeStudent parses a single student record.
func DecodeStudent(data []byte) (Student, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Student{}, &DecodeError{Collection: CollectionStudents, Err: err}
	}
	obj, _ := decodeObject(raw)
	return studentFromFields(obj), nil
}

func DecodeSubjects(data []byte) ([]Subject, error) {
	objs, err := decodeObjects(CollectionSubjects, data)
	if err != nil {
		return nil, err
	}
	subjects := make([]Subject, 0, len(objs))
	for _, obj := range objs {
		subjects = append(subjects, Subject{ID: obj.id("id"), Name: obj.text("name")})
	}
	return subjects, nil
}

func DecodeStudentScores(data []byte) ([]StudentScore, error) {
	objs, err := decodeObjects(CollectionStudentScores, data)
	if err != nil {
		return nil, err
	}
	scores := make([]StudentScore, 0, len(objs))
	for _, obj := range objs {
		scores = append(scores, scoreFromFields(obj))
	}
	return scores, nil
}

// DecodeStudentScore parses a single score record.
func DecodeStudentScore(data []byte) (StudentScore, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return StudentScore{}, &DecodeError{Collection: CollectionStudentScores, Err: err}
	}
	obj, _ := decodeObject(raw)
	return scoreFromFields(obj), nil
}

func DecodeClasses(data []byte) ([]ClassItem, error) {
	objs, err := decodeObjects(CollectionClasses, data)
	if err != nil {
		return nil, err
	}
	classes := make([]ClassItem, 0, len(objs))
	for _, obj := range objs {
		classes = append(classes, ClassItem{
			ID:     obj.id("id"),
			Code:   obj.text("classCode"),
			Name:   obj.text("name"),
			Status: obj.text("status"),
		})
	}
	return classes, nil
}

// DecodeCollections parses a document holding the four collections under their names,
// as found in a mock backend's db.json file. Missing collections are empty.
func DecodeCollections(data []byte) (Collections, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Collections{}, &DecodeError{Collection: "db", Err: err}
	}
	doc, _ := decodeObject(raw)

	var (
		c   Collections
		err error
	)
	collection := func(name string) []byte {
		if v, ok := doc[name]; ok {
			return v
		}
		return []byte("[]")
	}
	if c.Students, err = DecodeStudents(collection(CollectionStudents)); err != nil {
		return Collections{}, err
	}
	if c.Subjects, err = DecodeSubjects(collection(CollectionSubjects)); err != nil {
		return Collections{}, err
	}
	if c.StudentScores, err = DecodeStudentScores(collection(CollectionStudentScores)); err != nil {
		return Collections{}, err
	}
	if c.Classes, err = DecodeClasses(collection(CollectionClasses)); err != nil {
		return Collections{}, err
	}
	return c, nil
}
