// Package auth issues and resolves session tokens.
// Login writes one session record per token; every request carrying the
// token is resolved back into a caller identity.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	accountapp "storefront/application/account"
	"storefront/domain/shared"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Authenticator token → identity. An unknown or expired token is an
// ErrUnauthorized error; any other error is a lookup failure.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (shared.Identity, error)
}

// Store resolves sessions and opens new ones at login
type Store interface {
	Authenticator
	accountapp.SessionStore
}

// Session record written at login
type Session struct {
	UserID        string    `json:"userId"`
	Email         string    `json:"email"`
	Name          string    `json:"name,omitempty"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"emailVerified"`
	ExpiresAt     time.Time `json:"expiresAt,omitempty"`
}

// Identity admins carry the admin capability; everyone else is a user
func (s Session) Identity() shared.Identity {
	var id shared.Identity
	if s.Role == RoleAdmin {
		id = shared.AdminIdentity(s.UserID, s.Email)
	} else {
		id = shared.UserIdentity(s.UserID, s.Email)
	}
	id.Name = s.Name
	return id
}

func (s Session) validate(now time.Time) error {
	if s.UserID == "" {
		return shared.NewUnauthorizedError("invalid session")
	}
	if !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt) {
		return shared.NewUnauthorizedError("session expired, please log in again")
	}
	if !s.EmailVerified {
		return shared.NewForbiddenError("identity", "Access denied. Please verify your email address first.")
	}
	return nil
}

func decodeSession(raw []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	s.Role = strings.ToLower(s.Role)
	return s, nil
}

func newSession(grant accountapp.Grant, expiresAt time.Time) Session {
	return Session{
		UserID:        grant.AccountID,
		Email:         grant.Email,
		Name:          grant.Name,
		Role:          string(grant.Role),
		EmailVerified: grant.EmailVerified,
		ExpiresAt:     expiresAt,
	}
}

// NewToken 32 random bytes, hex encoded
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func errNoToken() error {
	return shared.NewUnauthorizedError("Access denied. No token provided. Please log in.")
}

func errUnknownToken() error {
	return shared.NewUnauthorizedError("Invalid token. Please log in again.")
}

// MemoryStore process-local sessions, for development and tests
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session), now: time.Now}
}

// Put registers a session for token
func (m *MemoryStore) Put(token string, s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = s
}

// Open stores a session for grant under a fresh token
func (m *MemoryStore) Open(ctx context.Context, grant accountapp.Grant, ttl time.Duration) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.now().Add(ttl)
	}
	m.Put(token, newSession(grant, expiresAt))
	return token, nil
}

// Close forgets the session
func (m *MemoryStore) Close(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

func (m *MemoryStore) Authenticate(ctx context.Context, token string) (shared.Identity, error) {
	if token == "" {
		return shared.Guest(), errNoToken()
	}
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return shared.Guest(), errUnknownToken()
	}
	if err := s.validate(m.now()); err != nil {
		return shared.Guest(), err
	}
	return s.Identity(), nil
}

var _ Store = (*MemoryStore)(nil)
