// Package account shopper and administrator accounts.
package account

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"storefront/domain/shared"
)

// Role what a signed-in account may do
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

const (
	ReasonAccountExists      = "ACCOUNT_EXISTS"
	ReasonInvalidCredentials = "INVALID_CREDENTIALS"
	ReasonAlreadyVerified    = "ALREADY_VERIFIED"
	ReasonInvalidToken       = "INVALID_TOKEN"
)

const (
	MinPasswordLength = 8
	// MaxPasswordBytes bcrypt ignores everything past 72 bytes
	MaxPasswordBytes  = 72
	MaxUsernameLength = 50

	// VerificationTTL lifetime of an email verification token
	VerificationTTL = 24 * time.Hour
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Account login identity. The password is only ever held as a hash.
type Account struct {
	id                  string
	username            string
	email               string
	passwordHash        string
	role                Role
	emailVerified       bool
	verificationToken   string
	verificationExpires time.Time
	createdAt           time.Time
	updatedAt           time.Time
	version             int
}

// NewAccountOptions fields for a new account; PasswordHash comes from a PasswordHasher
type NewAccountOptions struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
}

func NewAccount(opts NewAccountOptions) (*Account, error) {
	username := strings.TrimSpace(opts.Username)
	if username == "" {
		return nil, shared.NewValidationError("account", "username", "Username, email, and password are required")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return nil, shared.NewValidationError("account", "username", fmt.Sprintf("Username must be at most %d characters long", MaxUsernameLength))
	}
	email, err := NormalizeEmail(opts.Email)
	if err != nil {
		return nil, err
	}
	if opts.PasswordHash == "" {
		return nil, shared.NewValidationError("account", "password", "Username, email, and password are required")
	}
	role := opts.Role
	if role != RoleAdmin {
		role = RoleUser
	}

	now := time.Now()
	return &Account{
		id:           opts.ID,
		username:     username,
		email:        email,
		passwordHash: opts.PasswordHash,
		role:         role,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// NormalizeEmail lower-cases and trims; rejects malformed addresses
func NormalizeEmail(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" {
		return "", shared.NewValidationError("account", "email", "Email and password are required")
	}
	if !emailPattern.MatchString(e) {
		return "", shared.NewValidationError("account", "email", "Please provide a valid email")
	}
	return e, nil
}

// ValidatePassword checks a plaintext password before it is hashed
func ValidatePassword(password string) error {
	if password == "" {
		return shared.NewValidationError("account", "password", "Username, email, and password are required")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return shared.NewValidationError("account", "password",
			fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength))
	}
	if len(password) > MaxPasswordBytes {
		return shared.NewValidationError("account", "password",
			fmt.Sprintf("Password must be at most %d bytes long", MaxPasswordBytes))
	}
	return nil
}

// IssueVerification replaces any pending token with a fresh one
func (a *Account) IssueVerification(now time.Time) (string, error) {
	if a.emailVerified {
		return "", shared.NewError(shared.ErrBusinessRule, "account", ReasonAlreadyVerified, "", "Email is already verified")
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate verification token: %w", err)
	}
	a.verificationToken = hex.EncodeToString(buf)
	a.verificationExpires = now.Add(VerificationTTL)
	a.updatedAt = now
	return a.verificationToken, nil
}

// VerifyEmail consumes the pending token
func (a *Account) VerifyEmail(token string, now time.Time) error {
	if a.emailVerified {
		return shared.NewError(shared.ErrBusinessRule, "account", ReasonAlreadyVerified, "", "Email is already verified")
	}
	if token == "" || token != a.verificationToken || now.After(a.verificationExpires) {
		return NewInvalidTokenError()
	}
	a.MarkVerified(now)
	return nil
}

// MarkVerified verifies without a token, e.g. for administrators
func (a *Account) MarkVerified(now time.Time) {
	a.emailVerified = true
	a.verificationToken = ""
	a.verificationExpires = time.Time{}
	a.updatedAt = now
}

// NewDuplicateAccountError email or username already taken
func NewDuplicateAccountError(role Role) error {
	noun := "User"
	if role == RoleAdmin {
		noun = "Admin"
	}
	return shared.NewError(shared.ErrConflict, "account", ReasonAccountExists, "email",
		noun+" with this email or username already exists")
}

// NewInvalidCredentialsError one message for unknown email and wrong password
func NewInvalidCredentialsError() error {
	return shared.NewError(shared.ErrUnauthorized, "account", ReasonInvalidCredentials, "", "Invalid email or password")
}

func NewInvalidTokenError() error {
	return shared.NewError(shared.ErrNotFound, "account", ReasonInvalidToken, "token", "Invalid or expired verification token")
}

// ReconstructionDTO persisted state
type ReconstructionDTO struct {
	ID                  string
	Username            string
	Email               string
	PasswordHash        string
	Role                Role
	EmailVerified       bool
	VerificationToken   string
	VerificationExpires time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
	Version             int
}

// RebuildFromDTO rebuilds an account from storage
func RebuildFromDTO(dto ReconstructionDTO) *Account {
	return &Account{
		id:                  dto.ID,
		username:            dto.Username,
		email:               dto.Email,
		passwordHash:        dto.PasswordHash,
		role:                dto.Role,
		emailVerified:       dto.EmailVerified,
		verificationToken:   dto.VerificationToken,
		verificationExpires: dto.VerificationExpires,
		createdAt:           dto.CreatedAt,
		updatedAt:           dto.UpdatedAt,
		version:             dto.Version,
	}
}

func (a *Account) ToDTO() ReconstructionDTO {
	return ReconstructionDTO{
		ID:                  a.id,
		Username:            a.username,
		Email:               a.email,
		PasswordHash:        a.passwordHash,
		Role:                a.role,
		EmailVerified:       a.emailVerified,
		VerificationToken:   a.verificationToken,
		VerificationExpires: a.verificationExpires,
		CreatedAt:           a.createdAt,
		UpdatedAt:           a.updatedAt,
		Version:             a.version,
	}
}

func (a *Account) ID() string                { return a.id }
func (a *Account) Username() string          { return a.username }
func (a *Account) Email() string             { return a.email }
func (a *Account) PasswordHash() string      { return a.passwordHash }
func (a *Account) Role() Role                { return a.role }
func (a *Account) IsAdmin() bool             { return a.role == RoleAdmin }
func (a *Account) EmailVerified() bool       { return a.emailVerified }
func (a *Account) VerificationToken() string { return a.verificationToken }
func (a *Account) CreatedAt() time.Time      { return a.createdAt }
func (a *Account) UpdatedAt() time.Time      { return a.updatedAt }
func (a *Account) Version() int              { return a.version }

// IncrementVersionForSave bumps the optimistic lock version
func (a *Account) IncrementVersionForSave() {
	a.version++
}

// Repository account store. Email and username are unique across roles;
// Save reports a taken one as NewDuplicateAccountError.
type Repository interface {
	NextIdentity() string
	// FindByEmail returns (nil, nil) when unknown
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByVerificationToken(ctx context.Context, token string) (*Account, error)
	Save(ctx context.Context, a *Account) error
}
