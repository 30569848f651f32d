package po

import (
	"database/sql"
	"time"

	"storefront/domain/account"
)

// AccountPO login account. A consumed verification token is stored as NULL.
type AccountPO struct {
	ID                  string         `gorm:"primaryKey;size:64"`
	Username            string         `gorm:"size:50;uniqueIndex;not null"`
	Email               string         `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash        string         `gorm:"size:100;not null"`
	Role                string         `gorm:"size:16;index;not null;default:user"`
	EmailVerified       bool           `gorm:"not null;default:false"`
	VerificationToken   sql.NullString `gorm:"size:64;uniqueIndex"`
	VerificationExpires sql.NullTime
	CreatedAt           time.Time `gorm:"not null"`
	UpdatedAt           time.Time `gorm:"not null"`
	Version             int       `gorm:"default:0"`
}

func (AccountPO) TableName() string {
	return "accounts"
}

func FromAccountDomain(a *account.Account) *AccountPO {
	dto := a.ToDTO()
	return &AccountPO{
		ID:                  dto.ID,
		Username:            dto.Username,
		Email:               dto.Email,
		PasswordHash:        dto.PasswordHash,
		Role:                string(dto.Role),
		EmailVerified:       dto.EmailVerified,
		VerificationToken:   nullable(dto.VerificationToken),
		VerificationExpires: sql.NullTime{Time: dto.VerificationExpires, Valid: !dto.VerificationExpires.IsZero()},
		CreatedAt:           dto.CreatedAt,
		UpdatedAt:           dto.UpdatedAt,
		Version:             dto.Version,
	}
}

func (po *AccountPO) ToDomain() *account.Account {
	return account.RebuildFromDTO(account.ReconstructionDTO{
		ID:                  po.ID,
		Username:            po.Username,
		Email:               po.Email,
		PasswordHash:        po.PasswordHash,
		Role:                account.Role(po.Role),
		EmailVerified:       po.EmailVerified,
		VerificationToken:   po.VerificationToken.String,
		VerificationExpires: po.VerificationExpires.Time,
		CreatedAt:           po.CreatedAt,
		UpdatedAt:           po.UpdatedAt,
		Version:             po.Version,
	})
}
