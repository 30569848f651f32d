package auth

import (
	accountapp "storefront/application/account"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost work factor for new hashes
const DefaultBcryptCost = 12

// BcryptHasher bcrypt password hashing
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher cost outside bcrypt's range falls back to DefaultBcryptCost
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h *BcryptHasher) Matches(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var _ accountapp.PasswordHasher = (*BcryptHasher)(nil)
