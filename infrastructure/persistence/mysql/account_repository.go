package mysql

import (
	"context"
	"errors"

	"storefront/domain/account"
	"storefront/domain/shared"
	"storefront/infrastructure/persistence/mysql/po"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountRepository MySQL/GORM account store
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) NextIdentity() string {
	return uuid.New().String()
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	return r.findOne(conn(ctx, r.db).Where("email = ?", email))
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*account.Account, error) {
	return r.findOne(conn(ctx, r.db).Where("username = ?", username))
}

func (r *AccountRepository) FindByVerificationToken(ctx context.Context, token string) (*account.Account, error) {
	if token == "" {
		return nil, nil
	}
	return r.findOne(conn(ctx, r.db).Where("verification_token = ?", token))
}

func (r *AccountRepository) Save(ctx context.Context, a *account.Account) error {
	accountPO := po.FromAccountDomain(a)
	db := conn(ctx, r.db)

	if a.Version() == 0 {
		accountPO.Version = 1
		if err := db.Create(accountPO).Error; err != nil {
			if isDuplicateKeyError(err) {
				return account.NewDuplicateAccountError(a.Role())
			}
			return err
		}
		a.IncrementVersionForSave()
		return nil
	}

	accountPO.Version = a.Version() + 1
	found, updated, err := versionedUpdate(db, accountPO, a.ID(), a.Version(),
		"username", "email", "password_hash", "role", "email_verified",
		"verification_token", "verification_expires", "updated_at")
	if err != nil {
		if isDuplicateKeyError(err) {
			return account.NewDuplicateAccountError(a.Role())
		}
		return err
	}
	if !found || !updated {
		return shared.NewConflictError("account", "account "+a.ID()+" was modified by another transaction, please retry")
	}
	a.IncrementVersionForSave()
	return nil
}

func (r *AccountRepository) findOne(query *gorm.DB) (*account.Account, error) {
	var accountPO po.AccountPO
	if err := query.First(&accountPO).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return accountPO.ToDomain(), nil
}

var _ account.Repository = (*AccountRepository)(nil)
