package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"student-backend/internal/session"
)

type savedToken struct {
	AccessToken string    `json:"access_token"`
	Expiry      time.Time `json:"expiry,omitempty"`
}

// restoreSession loads a previously saved token into sess. Missing or
// expired tokens leave the session signed out.
func restoreSession(path string, sess *session.Session) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read token file: %w", err)
	}
	var tok savedToken
	if err := json.Unmarshal(data, &tok); err != nil {
		return fmt.Errorf("decode token file: %w", err)
	}
	if tok.AccessToken == "" {
		return nil
	}
	var ttl time.Duration
	if !tok.Expiry.IsZero() {
		ttl = time.Until(tok.Expiry)
		if ttl <= 0 {
			return nil
		}
	}
	sess.SetToken(tok.AccessToken, ttl)
	return nil
}

// persistSession writes the session's current token to path.
func persistSession(path string, sess *session.Session) error {
	tok, err := sess.Token()
	if err != nil {
		return err
	}
	data, err := json.Marshal(savedToken{AccessToken: tok.AccessToken, Expiry: tok.Expiry})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func forgetSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
