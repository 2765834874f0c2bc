// Package session holds the bearer credential of a signed-in teacher and
// notifies observers when it is dropped.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// ErrNoToken is returned by Token when nobody is signed in.
var ErrNoToken = errors.New("session: not signed in")

// Session stores one access token. The zero value is not usable; call New.
type Session struct {
	mu        sync.RWMutex
	token     *oauth2.Token
	observers map[uint64]func()
	nextID    uint64
}

// New returns an empty session.
func New() *Session {
	return &Session{observers: make(map[uint64]func())}
}

// SetToken stores an access token. A non-positive ttl means the token carries no
// client-side expiry.
func (s *Session) SetToken(accessToken string, ttl time.Duration) {
	tok := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
	if ttl > 0 {
		tok.Expiry = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()
}

// AccessToken returns the stored token string, or "" when signed out.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return ""
	}
	return s.token.AccessToken
}

// Authenticated reports whether a usable token is stored.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != nil && s.token.Valid()
}

// Token implements oauth2.TokenSource.
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil || !s.token.Valid() {
		return nil, ErrNoToken
	}
	tok := *s.token
	return &tok, nil
}

// Subscribe registers fn to run on every Logout. The returned func removes it.
func (s *Session) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// Logout drops the token and notifies observers. Observers run outside the
// session lock, so they may call back into the session.
func (s *Session) Logout() {
	s.mu.Lock()
	s.token = nil
	fns := make([]func(), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

type ctxKey struct{}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached by WithSession.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
