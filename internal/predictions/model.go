package predictions

import (
	"time"

	"student-backend/internal/contract"
	"student-backend/internal/explain"
	"student-backend/internal/records"
)

// Record is one persisted prediction.
type Record struct {
	ID               string
	TeacherID        string
	Input            records.StudentInput
	Summary          explain.Summary
	Prediction       string
	Confidence       float64
	ModelType        string
	ModelUsed        string
	Contributions    []contract.FeatureContribution
	PhotoKey         string
	PhotoContentType string
	CreatedAt        time.Time
}

// HasPhoto reports whether a photo was stored with the record.
func (r Record) HasPhoto() bool {
	return r.PhotoKey != ""
}

// History is the /history row for the record.
func (r Record) History() contract.HistoryRecord {
	return contract.HistoryRecord{
		ID:                   r.ID,
		Name:                 r.Input.Name,
		Age:                  r.Input.Age,
		Department:           r.Input.Department,
		Semesters:            nonNilSemesters(r.Input.Semesters),
		AvgPercentage:        r.Summary.AvgPercentage,
		LastPercentage:       r.Summary.LastPercentage,
		AvgAttendance:        r.Summary.AvgAttendance,
		Prediction:           r.Prediction,
		Confidence:           r.Confidence,
		ModelUsed:            r.ModelUsed,
		FeatureContributions: nonNilContributions(r.Contributions),
		HasPhoto:             r.HasPhoto(),
		CreatedAt:            r.CreatedAt,
	}
}

// Response is the predict endpoint body for the record.
func (r Record) Response() contract.PredictionResponse {
	return r.History().Response()
}

func nonNilSemesters(s []records.SemesterEntry) []records.SemesterEntry {
	if s == nil {
		return []records.SemesterEntry{}
	}
	return s
}

func nonNilContributions(c []contract.FeatureContribution) []contract.FeatureContribution {
	if c == nil {
		return []contract.FeatureContribution{}
	}
	return c
}
