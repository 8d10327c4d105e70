package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntryModel rows are insert-only. Dedupe keys are pointers so that
// entries without one stay NULL and never collide on the unique indexes.
type LedgerEntryModel struct {
	ID       string `gorm:"primaryKey"`
	TenantID string `gorm:"index:idx_ledger_tenant_member;uniqueIndex:uq_ledger_source;uniqueIndex:uq_ledger_idem;not null"`
	MemberID string `gorm:"index:idx_ledger_tenant_member;uniqueIndex:uq_ledger_source;not null"`

	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	EventType   string          `gorm:"index;not null"`
	Description string

	SourceType     *string `gorm:"uniqueIndex:uq_ledger_source"`
	SourceID       *string `gorm:"uniqueIndex:uq_ledger_source"`
	IdempotencyKey *string `gorm:"uniqueIndex:uq_ledger_idem"`

	CreatedBy string

	Synced        bool `gorm:"index;default:false"`
	ExternalTxnID string
	SyncError     string
	SyncAttempts  int
	SyncedAt      *time.Time

	CreatedAt time.Time `gorm:"index"`
}
