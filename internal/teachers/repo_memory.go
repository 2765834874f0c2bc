package teachers

import (
	"context"
	"sync"
)

type MemoryRepo struct {
	mu      sync.RWMutex
	byID    map[string]Teacher
	byEmail map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:    make(map[string]Teacher),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, t Teacher) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[t.Email]; ok {
		return ErrEmailTaken
	}
	r.byID[t.ID] = t
	r.byEmail[t.Email] = t.ID
	return nil
}

func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (Teacher, error) {
	if err := ctx.Err(); err != nil {
		return Teacher{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return Teacher{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Teacher, error) {
	if err := ctx.Err(); err != nil {
		return Teacher{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byID[id]
	if !ok {
		return Teacher{}, ErrNotFound
	}
	return t, nil
}

var _ Repo = (*MemoryRepo)(nil)
