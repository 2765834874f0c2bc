package predictions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"student-backend/internal/records"
)

type PGRepo struct {
	DB *sql.DB
}

const recordColumns = `id, teacher_id, name, age, department, semesters,
  avg_percentage, last_percentage, avg_attendance,
  prediction, confidence, model_type, model_used, feature_contributions,
  photo_key, photo_content_type, created_at`

func (r *PGRepo) Create(ctx context.Context, rec Record) error {
	semesters, err := json.Marshal(nonNilSemesters(rec.Input.Semesters))
	if err != nil {
		return fmt.Errorf("marshal semesters: %w", err)
	}
	contributions, err := json.Marshal(nonNilContributions(rec.Contributions))
	if err != nil {
		return fmt.Errorf("marshal contributions: %w", err)
	}
	const query = `
INSERT INTO prediction_records (` + recordColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err = r.DB.ExecContext(ctx, query,
		rec.ID,
		nullableString(rec.TeacherID),
		rec.Input.Name,
		rec.Input.Age,
		string(rec.Input.Department),
		string(semesters),
		rec.Summary.AvgPercentage,
		rec.Summary.LastPercentage,
		rec.Summary.AvgAttendance,
		rec.Prediction,
		rec.Confidence,
		rec.ModelType,
		rec.ModelUsed,
		string(contributions),
		nullableString(rec.PhotoKey),
		nullableString(rec.PhotoContentType),
		rec.CreatedAt,
	)
	return err
}

func (r *PGRepo) List(ctx context.Context, limit int) ([]Record, error) {
	const query = `
SELECT ` + recordColumns + `
FROM prediction_records
ORDER BY created_at DESC
LIMIT $1`
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Record, error) {
	const query = `
SELECT ` + recordColumns + `
FROM prediction_records
WHERE id = $1
LIMIT 1`
	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var (
		rec              Record
		teacherID        sql.NullString
		department       string
		semesters        []byte
		contributions    []byte
		photoKey         sql.NullString
		photoContentType sql.NullString
	)
	err := s.Scan(
		&rec.ID,
		&teacherID,
		&rec.Input.Name,
		&rec.Input.Age,
		&department,
		&semesters,
		&rec.Summary.AvgPercentage,
		&rec.Summary.LastPercentage,
		&rec.Summary.AvgAttendance,
		&rec.Prediction,
		&rec.Confidence,
		&rec.ModelType,
		&rec.ModelUsed,
		&contributions,
		&photoKey,
		&photoContentType,
		&rec.CreatedAt,
	)
	if err != nil {
		return Record{}, err
	}
	rec.Input.Department = records.Department(department)
	if len(semesters) > 0 {
		if err := json.Unmarshal(semesters, &rec.Input.Semesters); err != nil {
			return Record{}, fmt.Errorf("decode semesters for %s: %w", rec.ID, err)
		}
	}
	if len(contributions) > 0 {
		if err := json.Unmarshal(contributions, &rec.Contributions); err != nil {
			return Record{}, fmt.Errorf("decode contributions for %s: %w", rec.ID, err)
		}
	}
	if teacherID.Valid {
		rec.TeacherID = teacherID.String
	}
	if photoKey.Valid {
		rec.PhotoKey = photoKey.String
	}
	if photoContentType.Valid {
		rec.PhotoContentType = photoContentType.String
	}
	return rec, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
