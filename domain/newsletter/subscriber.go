// Package newsletter newsletter subscription subdomain.
package newsletter

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"storefront/domain/shared"
)

const (
	ReasonAlreadySubscribed   = "ALREADY_SUBSCRIBED"
	ReasonAlreadyConfirmed    = "ALREADY_CONFIRMED"
	ReasonAlreadyUnsubscribed = "ALREADY_UNSUBSCRIBED"
	ReasonInvalidToken        = "INVALID_TOKEN"
	ReasonInvalidEmail        = "INVALID_EMAIL"
	ReasonNoSubscribers       = "NO_ACTIVE_SUBSCRIBERS"
)

var emailPattern = regexp.MustCompile(`.+@.+\..+`)

// Subscriber newsletter subscriber aggregate
type Subscriber struct {
	id                string
	email             string
	confirmationToken string
	unsubscribeToken  string
	isConfirmed       bool
	isActive          bool
	subscribedAt      time.Time
	version           int
}

// NormalizeEmail lower-cases and trims; rejects malformed addresses
func NormalizeEmail(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" {
		return "", shared.NewError(shared.ErrInvalidInput, "subscriber", ReasonInvalidEmail, "email", "Email is required")
	}
	if !emailPattern.MatchString(e) || strings.ContainsAny(e, " \t") {
		return "", shared.NewError(shared.ErrInvalidInput, "subscriber", ReasonInvalidEmail, "email", "Please fill a valid email address")
	}
	return e, nil
}

// NewSubscriber unconfirmed, active subscriber with fresh tokens
func NewSubscriber(id, email string) (*Subscriber, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	confirmation, err := NewToken()
	if err != nil {
		return nil, err
	}
	unsubscribe, err := NewToken()
	if err != nil {
		return nil, err
	}
	return &Subscriber{
		id:                id,
		email:             normalized,
		confirmationToken: confirmation,
		unsubscribeToken:  unsubscribe,
		isActive:          true,
		subscribedAt:      time.Now(),
	}, nil
}

// NewToken 32 random bytes, hex encoded
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Confirm marks the subscription confirmed and burns the confirmation token
func (s *Subscriber) Confirm() error {
	if s.isConfirmed {
		return shared.NewError(shared.ErrBusinessRule, "subscriber", ReasonAlreadyConfirmed, "", "Email is already confirmed")
	}
	s.isConfirmed = true
	s.confirmationToken = ""
	return nil
}

// Unsubscribe deactivates the subscription
func (s *Subscriber) Unsubscribe() error {
	if !s.isActive {
		return shared.NewError(shared.ErrBusinessRule, "subscriber", ReasonAlreadyUnsubscribed, "", "Email is already unsubscribed")
	}
	s.isActive = false
	return nil
}

// Resubscribe reactivates a confirmed subscriber who had unsubscribed
func (s *Subscriber) Resubscribe() error {
	if s.isConfirmed && s.isActive {
		return NewAlreadySubscribedError()
	}
	s.isActive = true
	s.subscribedAt = time.Now()
	return nil
}

// IsDeliverable confirmed and active
func (s *Subscriber) IsDeliverable() bool {
	return s.isConfirmed && s.isActive
}

// NewAlreadySubscribedError confirmed, active subscriber tried again
func NewAlreadySubscribedError() error {
	return shared.NewError(shared.ErrConflict, "subscriber", ReasonAlreadySubscribed, "email", "Email is already subscribed")
}

// NewInvalidTokenError unknown confirmation or unsubscribe token
func NewInvalidTokenError(message string) error {
	return shared.NewError(shared.ErrNotFound, "subscriber", ReasonInvalidToken, "token", message)
}

// ReconstructionDTO persisted state
type ReconstructionDTO struct {
	ID                string
	Email             string
	ConfirmationToken string
	UnsubscribeToken  string
	IsConfirmed       bool
	IsActive          bool
	SubscribedAt      time.Time
	Version           int
}

// RebuildFromDTO rebuilds a subscriber from storage
func RebuildFromDTO(dto ReconstructionDTO) *Subscriber {
	return &Subscriber{
		id:                dto.ID,
		email:             dto.Email,
		confirmationToken: dto.ConfirmationToken,
		unsubscribeToken:  dto.UnsubscribeToken,
		isConfirmed:       dto.IsConfirmed,
		isActive:          dto.IsActive,
		subscribedAt:      dto.SubscribedAt,
		version:           dto.Version,
	}
}

// ToDTO snapshot for persistence
func (s *Subscriber) ToDTO() ReconstructionDTO {
	return ReconstructionDTO{
		ID:                s.id,
		Email:             s.email,
		ConfirmationToken: s.confirmationToken,
		UnsubscribeToken:  s.unsubscribeToken,
		IsConfirmed:       s.isConfirmed,
		IsActive:          s.isActive,
		SubscribedAt:      s.subscribedAt,
		Version:           s.version,
	}
}

func (s *Subscriber) ID() string                { return s.id }
func (s *Subscriber) Email() string             { return s.email }
func (s *Subscriber) ConfirmationToken() string { return s.confirmationToken }
func (s *Subscriber) UnsubscribeToken() string  { return s.unsubscribeToken }
func (s *Subscriber) IsConfirmed() bool         { return s.isConfirmed }
func (s *Subscriber) IsActive() bool            { return s.isActive }
func (s *Subscriber) SubscribedAt() time.Time   { return s.subscribedAt }
func (s *Subscriber) Version() int              { return s.version }

// IncrementVersionForSave bumps the optimistic lock version
func (s *Subscriber) IncrementVersionForSave() {
	s.version++
}

// Repository subscriber store
type Repository interface {
	NextIdentity() string
	// FindByEmail returns (nil, nil) when unknown
	FindByEmail(ctx context.Context, email string) (*Subscriber, error)
	FindByConfirmationToken(ctx context.Context, token string) (*Subscriber, error)
	FindByUnsubscribeToken(ctx context.Context, token string) (*Subscriber, error)
	FindActiveConfirmed(ctx context.Context) ([]*Subscriber, error)
	Save(ctx context.Context, s *Subscriber) error
}
