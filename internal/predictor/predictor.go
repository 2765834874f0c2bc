// Package predictor classifies a student record and attributes the result
// to individual features.
package predictor

import (
	"context"
	"errors"

	"student-backend/internal/explain"
	"student-backend/internal/records"
)

const (
	LabelNeedsAttention = "Needs Attention"
	LabelAverage        = "Average"
	LabelGood           = "Good"
)

// ErrModelUnavailable is returned when the requested model cannot serve.
var ErrModelUnavailable = errors.New("model unavailable")

// Result is one classification with per-feature contributions.
type Result struct {
	Prediction    string             `json:"prediction"`
	Confidence    float64            `json:"confidence"`
	ModelUsed     string             `json:"model_used"`
	Contributions map[string]float64 `json:"contributions"`
}

// Predictor classifies a feature vector with the ml or dl model.
type Predictor interface {
	Predict(ctx context.Context, features Vector, modelType string) (Result, error)
}

// NamedValue is one entry of a feature vector.
type NamedValue struct {
	Feature explain.Feature
	Value   float64
}

// Vector is the ordered model input: age, then internal, university and
// attendance for semesters 1..8.
type Vector []NamedValue

// BuildVector flattens a record. Semesters that were not submitted are
// zero-filled.
func BuildVector(in records.StudentInput) Vector {
	bySem := make(map[int]records.SemesterEntry, len(in.Semesters))
	for _, s := range in.Semesters {
		bySem[s.Semester] = s
	}
	v := make(Vector, 0, 1+records.MaxSemesters*len(explain.Metrics))
	v = append(v, NamedValue{Feature: explain.ParseFeature("age"), Value: float64(in.Age)})
	for n := records.MinSemester; n <= records.MaxSemesters; n++ {
		s := bySem[n]
		v = append(v,
			NamedValue{Feature: explain.SemesterFeature(n, explain.MetricInternal), Value: float64(s.InternalMarks)},
			NamedValue{Feature: explain.SemesterFeature(n, explain.MetricUniversity), Value: float64(s.UniversityMarks)},
			NamedValue{Feature: explain.SemesterFeature(n, explain.MetricAttendance), Value: s.Attendance},
		)
	}
	return v
}

// Map returns the vector keyed by wire name.
func (v Vector) Map() map[string]float64 {
	out := make(map[string]float64, len(v))
	for _, nv := range v {
		out[nv.Feature.Name] = nv.Value
	}
	return out
}

// Contributions pairs every feature with the contribution reported in r,
// in vector order. Features the model did not attribute get zero.
func (v Vector) Contributions(r Result) []explain.Contribution {
	out := make([]explain.Contribution, 0, len(v))
	for _, nv := range v {
		out = append(out, explain.Contribution{
			Feature:      nv.Feature,
			Value:        nv.Value,
			Contribution: r.Contributions[nv.Feature.Name],
		})
	}
	return out
}
