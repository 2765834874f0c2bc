package teachers

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("teacher not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Repo persists teacher accounts. Emails are stored normalized.
type Repo interface {
	Create(ctx context.Context, t Teacher) error
	GetByEmail(ctx context.Context, email string) (Teacher, error)
	GetByID(ctx context.Context, id string) (Teacher, error)
}
