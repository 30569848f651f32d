package memory

import (
	"context"
	"strings"
	"sync"

	"storefront/domain/account"
)

// AccountRepository in-memory account store
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]account.ReconstructionDTO
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[string]account.ReconstructionDTO)}
}

func (r *AccountRepository) NextIdentity() string {
	return newID()
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	return r.find(func(dto account.ReconstructionDTO) bool { return dto.Email == email }), nil
}

// FindByUsername usernames compare case-insensitively, as MySQL's default collation does
func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*account.Account, error) {
	return r.find(func(dto account.ReconstructionDTO) bool { return strings.EqualFold(dto.Username, username) }), nil
}

func (r *AccountRepository) FindByVerificationToken(ctx context.Context, token string) (*account.Account, error) {
	if token == "" {
		return nil, nil
	}
	return r.find(func(dto account.ReconstructionDTO) bool { return dto.VerificationToken == token }), nil
}

func (r *AccountRepository) Save(ctx context.Context, a *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.accounts[a.ID()]; ok && existing.Version != a.Version() {
		return errStale("account", a.ID())
	}
	for id, dto := range r.accounts {
		if id != a.ID() && (dto.Email == a.Email() || strings.EqualFold(dto.Username, a.Username())) {
			return account.NewDuplicateAccountError(a.Role())
		}
	}
	a.IncrementVersionForSave()
	r.accounts[a.ID()] = a.ToDTO()
	return nil
}

func (r *AccountRepository) find(match func(account.ReconstructionDTO) bool) *account.Account {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, dto := range r.accounts {
		if match(dto) {
			return account.RebuildFromDTO(dto)
		}
	}
	return nil
}

var _ account.Repository = (*AccountRepository)(nil)
