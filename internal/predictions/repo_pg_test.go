package predictions

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"student-backend/internal/contract"
	"student-backend/internal/explain"
	"student-backend/internal/records"
)

var recordCols = []string{
	"id", "teacher_id", "name", "age", "department", "semesters",
	"avg_percentage", "last_percentage", "avg_attendance",
	"prediction", "confidence", "model_type", "model_used", "feature_contributions",
	"photo_key", "photo_content_type", "created_at",
}

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	created := time.Date(2026, time.April, 2, 8, 30, 0, 0, time.UTC)
	rec := Record{
		ID:        "rec-1",
		TeacherID: "t-1",
		Input: records.StudentInput{
			Name:       "Asha",
			Age:        20,
			Department: records.DepartmentECE,
			Semesters:  []records.SemesterEntry{{Semester: 1, InternalMarks: 200, UniversityMarks: 210, Attendance: 85}},
		},
		Summary:       explain.Summary{AvgPercentage: 68.33, LastPercentage: 68.33, AvgAttendance: 85},
		Prediction:    "Average",
		Confidence:    0.8,
		ModelType:     "ml",
		ModelUsed:     "Random Forest",
		Contributions: []contract.FeatureContribution{{Feature: "age", Value: 20, Contribution: 0.1}},
		CreatedAt:     created,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO prediction_records")).
		WithArgs(
			"rec-1", "t-1", "Asha", 20, "ECE",
			`[{"semester":1,"internal_marks":200,"university_marks":210,"attendance":85}]`,
			68.33, 68.33, 85.0,
			"Average", 0.8, "ml", "Random Forest",
			`[{"feature":"age","value":20,"contribution":0.1}]`,
			nil, nil, created,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := (&PGRepo{DB: db}).Create(context.Background(), rec); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoListDecodesJSONColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	created := time.Date(2026, time.April, 2, 8, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows(recordCols).
		AddRow("rec-2", nil, "Ravi", 21, "IT",
			[]byte(`[{"semester":2,"internal_marks":150,"university_marks":150,"attendance":70}]`),
			50.0, 50.0, 70.0, "Needs Attention", 0.7, "dl", "Neural Network",
			[]byte(`[{"feature":"sem2_internal","value":150,"contribution":-0.2}]`),
			"abc/photo.png", "image/png", created)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WithArgs(5).
		WillReturnRows(rows)

	got, err := (&PGRepo{DB: db}).List(context.Background(), 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one record, got %d", len(got))
	}
	r := got[0]
	if r.TeacherID != "" || r.Input.Department != records.DepartmentIT || len(r.Input.Semesters) != 1 {
		t.Fatalf("unexpected record %+v", r)
	}
	if r.Input.Semesters[0].Semester != 2 || r.Contributions[0].Contribution != -0.2 {
		t.Fatalf("json columns not decoded: %+v", r)
	}
	if !r.HasPhoto() || r.PhotoContentType != "image/png" {
		t.Fatalf("photo columns not decoded: %+v", r)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	if _, err := (&PGRepo{DB: db}).GetByID(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
