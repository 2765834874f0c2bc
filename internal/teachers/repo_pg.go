package teachers

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, t Teacher) error {
	const query = `
INSERT INTO teachers (id, email, password_hash, name, created_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.DB.ExecContext(ctx, query, t.ID, t.Email, t.PasswordHash, t.Name, t.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (Teacher, error) {
	const query = `
SELECT id, email, password_hash, name, created_at
FROM teachers
WHERE email = $1
LIMIT 1`
	return r.getOne(ctx, query, email)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Teacher, error) {
	const query = `
SELECT id, email, password_hash, name, created_at
FROM teachers
WHERE id = $1
LIMIT 1`
	return r.getOne(ctx, query, id)
}

func (r *PGRepo) getOne(ctx context.Context, query string, arg string) (Teacher, error) {
	var t Teacher
	var name sql.NullString
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&t.ID,
		&t.Email,
		&t.PasswordHash,
		&name,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Teacher{}, ErrNotFound
		}
		return Teacher{}, err
	}
	if name.Valid {
		t.Name = name.String
	}
	return t, nil
}

var _ Repo = (*PGRepo)(nil)
