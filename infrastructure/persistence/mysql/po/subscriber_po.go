package po

import (
	"database/sql"
	"time"

	"storefront/domain/newsletter"
)

// SubscriberPO newsletter subscriber. Burnt tokens are stored as NULL so the
// unique indexes only cover live tokens.
type SubscriberPO struct {
	ID                string         `gorm:"primaryKey;size:64"`
	Email             string         `gorm:"size:255;uniqueIndex;not null"`
	ConfirmationToken sql.NullString `gorm:"size:64;uniqueIndex"`
	UnsubscribeToken  sql.NullString `gorm:"size:64;uniqueIndex"`
	IsConfirmed       bool           `gorm:"not null;default:false"`
	IsActive          bool           `gorm:"not null;default:true"`
	SubscribedAt      time.Time      `gorm:"not null"`
	Version           int            `gorm:"default:0"`
}

func (SubscriberPO) TableName() string {
	return "newsletter_subscribers"
}

func FromSubscriberDomain(s *newsletter.Subscriber) *SubscriberPO {
	dto := s.ToDTO()
	return &SubscriberPO{
		ID:                dto.ID,
		Email:             dto.Email,
		ConfirmationToken: nullable(dto.ConfirmationToken),
		UnsubscribeToken:  nullable(dto.UnsubscribeToken),
		IsConfirmed:       dto.IsConfirmed,
		IsActive:          dto.IsActive,
		SubscribedAt:      dto.SubscribedAt,
		Version:           dto.Version,
	}
}

func (po *SubscriberPO) ToDomain() *newsletter.Subscriber {
	return newsletter.RebuildFromDTO(newsletter.ReconstructionDTO{
		ID:                po.ID,
		Email:             po.Email,
		ConfirmationToken: po.ConfirmationToken.String,
		UnsubscribeToken:  po.UnsubscribeToken.String,
		IsConfirmed:       po.IsConfirmed,
		IsActive:          po.IsActive,
		SubscribedAt:      po.SubscribedAt,
		Version:           po.Version,
	})
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
