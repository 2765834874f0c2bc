package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"student-backend/internal/contract"
	"student-backend/internal/explain"
	"student-backend/internal/records"
)

func init() {
	color.NoColor = true
}

func TestRenderView(t *testing.T) {
	v := explain.Build(contract.PredictionResponse{
		Prediction: "Good",
		Confidence: 0.875,
		ModelUsed:  "Random Forest",
		Semesters: []records.SemesterEntry{
			{Semester: 1, InternalMarks: 200, UniversityMarks: 210, Attendance: 85},
		},
		FeatureContributions: []contract.FeatureContribution{
			{Feature: "sem1_internal", Value: 200, Contribution: 0.4},
			{Feature: "age", Value: 20, Contribution: -0.2},
		},
	})
	var buf bytes.Buffer
	renderView(&buf, "rec-1", v)
	out := buf.String()

	for _, want := range []string{"Good (87.5% confidence)", "Random Forest", "Record: rec-1", "Semester 1 internal marks", "+0.4000", "Sem 1", "Main factors supporting"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	renderHistory(&buf, []contract.HistoryRecord{{
		ID:            "rec-7",
		Name:          "Ravi",
		Department:    records.DepartmentECE,
		AvgPercentage: 71.25,
		Prediction:    "Average",
		Confidence:    0.5,
		ModelUsed:     "Neural Network",
		HasPhoto:      true,
		CreatedAt:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}})
	out := buf.String()
	for _, want := range []string{"rec-7", "Ravi", "ECE", "71.25", "Average", "50.0%", "Neural Network", "yes"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderFieldErrorsSorted(t *testing.T) {
	var buf bytes.Buffer
	renderFieldErrors(&buf, records.FieldErrors{"name": "Name is required", "age": "Age must be between 15 and 30"})
	out := buf.String()
	if strings.Index(out, "age:") > strings.Index(out, "name:") {
		t.Fatalf("expected paths in lexical order:\n%s", out)
	}
}

func TestBar(t *testing.T) {
	if got := bar(1, false); got != strings.Repeat("█", barWidth) {
		t.Fatalf("full bar = %q", got)
	}
	if got := bar(0.001, true); got != "░" {
		t.Fatalf("tiny bar should keep one glyph, got %q", got)
	}
	if bar(0, false) != "" {
		t.Fatalf("zero magnitude should render nothing")
	}
}

func TestPhotoExtension(t *testing.T) {
	if photoExtension("image/jpeg") != ".jpg" || photoExtension("image/png; charset=binary") != ".png" {
		t.Fatalf("unexpected image extensions")
	}
	if photoExtension("") != "" {
		t.Fatalf("unknown type should have no extension")
	}
}
