package account

import (
	"time"

	"storefront/domain/account"
)

// RegisterRequest new account; fields are validated by the service so the
// client sees which one is wrong
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest email and password sign-in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResendVerificationRequest asks for a fresh verification link
type ResendVerificationRequest struct {
	Email string `json:"email"`
}

// AccountResponse public view of an account
type AccountResponse struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

// RegisterResponse created account; VerificationRequired when a link was mailed
type RegisterResponse struct {
	Account              AccountResponse `json:"user"`
	VerificationRequired bool            `json:"emailVerificationRequired"`
}

// LoginResponse issued session
type LoginResponse struct {
	Account   AccountResponse `json:"user"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

func toAccountResponse(a *account.Account) AccountResponse {
	return AccountResponse{
		ID:            a.ID(),
		Username:      a.Username(),
		Email:         a.Email(),
		Role:          string(a.Role()),
		EmailVerified: a.EmailVerified(),
		CreatedAt:     a.CreatedAt(),
	}
}
