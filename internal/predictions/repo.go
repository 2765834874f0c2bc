package predictions

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("record not found")

// Repo persists prediction records.
type Repo interface {
	Create(ctx context.Context, r Record) error
	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]Record, error)
	GetByID(ctx context.Context, id string) (Record, error)
}
