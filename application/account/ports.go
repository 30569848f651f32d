package account

import (
	"context"
	"time"

	newsletterapp "storefront/application/newsletter"
	"storefront/domain/account"
)

// PasswordHasher one-way password hashing
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Matches reports whether password produced hash
	Matches(hash, password string) bool
}

// Grant who a new session belongs to
type Grant struct {
	AccountID     string
	Email         string
	Name          string
	Role          account.Role
	EmailVerified bool
}

// SessionStore opens and closes login sessions
type SessionStore interface {
	Open(ctx context.Context, grant Grant, ttl time.Duration) (token string, err error)
	Close(ctx context.Context, token string) error
}

// Mailer the SMTP adapter serving newsletter mail also sends verification mail
type Mailer = newsletterapp.Mailer

// Message one outgoing email
type Message = newsletterapp.Message
