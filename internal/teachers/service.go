package teachers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"student-backend/internal/contract"
	"student-backend/internal/records"
	"student-backend/internal/shared/auth"
)

const (
	emailMinLen    = 5
	emailMaxLen    = 254
	passwordMinLen = 6
	passwordMaxLen = 128
	nameMaxLen     = 120
)

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service manages teacher accounts and issues tokens.
type Service struct {
	Repo   Repo
	Signer *auth.Signer
}

func NewService(repo Repo, signer *auth.Signer) *Service {
	return &Service{Repo: repo, Signer: signer}
}

// NormalizeEmail lowercases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates an account and returns a token for it.
func (s *Service) Signup(ctx context.Context, req contract.SignupRequest) (contract.TokenResponse, error) {
	if fe := validateSignup(req); fe != nil {
		return contract.TokenResponse{}, fe
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return contract.TokenResponse{}, fmt.Errorf("hash password: %w", err)
	}
	t := Teacher{
		ID:           uuid.NewString(),
		Email:        NormalizeEmail(req.Email),
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, t); err != nil {
		return contract.TokenResponse{}, err
	}
	return s.issue(t)
}

// Login verifies credentials and returns a fresh token.
func (s *Service) Login(ctx context.Context, req contract.LoginRequest) (contract.TokenResponse, error) {
	if fe := validateLogin(req); fe != nil {
		return contract.TokenResponse{}, fe
	}
	t, err := s.Repo.GetByEmail(ctx, NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return contract.TokenResponse{}, ErrInvalidCredentials
		}
		return contract.TokenResponse{}, err
	}
	if err := auth.CheckPassword(t.PasswordHash, req.Password); err != nil {
		return contract.TokenResponse{}, ErrInvalidCredentials
	}
	return s.issue(t)
}

// Profile loads the account behind a token subject.
func (s *Service) Profile(ctx context.Context, teacherID string) (contract.Teacher, error) {
	if strings.TrimSpace(teacherID) == "" {
		return contract.Teacher{}, ErrNotFound
	}
	t, err := s.Repo.GetByID(ctx, teacherID)
	if err != nil {
		return contract.Teacher{}, err
	}
	return t.Profile(), nil
}

func (s *Service) issue(t Teacher) (contract.TokenResponse, error) {
	token, err := s.Signer.Sign(t.ID, t.Email)
	if err != nil {
		return contract.TokenResponse{}, fmt.Errorf("sign token: %w", err)
	}
	return contract.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.Signer.TTL() / time.Second),
	}, nil
}

func validateSignup(req contract.SignupRequest) records.FieldErrors {
	fe := records.FieldErrors{}
	checkLength(fe, "email", strings.TrimSpace(req.Email), emailMinLen, emailMaxLen)
	checkLength(fe, "password", req.Password, passwordMinLen, passwordMaxLen)
	if utf8.RuneCountInString(strings.TrimSpace(req.Name)) > nameMaxLen {
		fe["name"] = fmt.Sprintf("Name must be at most %d characters", nameMaxLen)
	}
	if _, ok := fe["email"]; !ok && !strings.Contains(req.Email, "@") {
		fe["email"] = "Email must contain @"
	}
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func validateLogin(req contract.LoginRequest) records.FieldErrors {
	fe := records.FieldErrors{}
	checkLength(fe, "email", strings.TrimSpace(req.Email), emailMinLen, emailMaxLen)
	checkLength(fe, "password", req.Password, 1, passwordMaxLen)
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func checkLength(fe records.FieldErrors, field, value string, minLen, maxLen int) {
	n := utf8.RuneCountInString(value)
	if n < minLen || n > maxLen {
		fe[field] = fmt.Sprintf("%s must be between %d and %d characters", strings.ToUpper(field[:1])+field[1:], minLen, maxLen)
	}
}
