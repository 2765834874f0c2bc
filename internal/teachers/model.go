package teachers

import (
	"time"

	"student-backend/internal/contract"
)

// Teacher is a stored account.
type Teacher struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
}

// Profile is the public view of the account.
func (t Teacher) Profile() contract.Teacher {
	return contract.Teacher{
		ID:        t.ID,
		Email:     t.Email,
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
	}
}
