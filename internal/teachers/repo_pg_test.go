package teachers

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPGRepoCreateMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := &PGRepo{DB: db}
	created := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO teachers")).
		WithArgs("t-1", "a@b.co", "hash", "Asha", created).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO teachers")).
		WithArgs("t-2", "a@b.co", "hash", "", created).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	if err := repo.Create(context.Background(), Teacher{ID: "t-1", Email: "a@b.co", PasswordHash: "hash", Name: "Asha", CreatedAt: created}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err = repo.Create(context.Background(), Teacher{ID: "t-2", Email: "a@b.co", PasswordHash: "hash", CreatedAt: created})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoGetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := &PGRepo{DB: db}
	created := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "created_at"}).
		AddRow("t-1", "a@b.co", "hash", nil, created)
	mock.ExpectQuery(regexp.QuoteMeta("FROM teachers")).
		WithArgs("a@b.co").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("FROM teachers")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	got, err := repo.GetByEmail(context.Background(), "a@b.co")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "t-1" || got.Name != "" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected teacher %+v", got)
	}
	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
