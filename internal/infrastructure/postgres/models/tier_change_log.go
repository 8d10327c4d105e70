package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TierChangeLogModel rows are insert-only. There is no update path anywhere
// in the repository layer.
type TierChangeLogModel struct {
	ID       string `gorm:"primaryKey"`
	TenantID string `gorm:"index:idx_tier_logs_tenant_member;not null"`
	MemberID string `gorm:"index:idx_tier_logs_tenant_member;not null"`

	PreviousTierID   *string
	NewTierID        *string
	PreviousTierName string
	NewTierName      string

	ChangeType string `gorm:"index;not null"`
	SourceType string `gorm:"not null"`

	SourceReference string `gorm:"index"`
	Reason          string
	OrderTotal      decimal.Decimal `gorm:"type:numeric(12,2)"`

	ExpiresAt *time.Time
	CreatedAt time.Time `gorm:"index"`
	CreatedBy string
}
