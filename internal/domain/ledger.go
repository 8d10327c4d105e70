package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreditEventType string

const (
	EventTradeIn           CreditEventType = "trade_in_completed"
	EventCashback          CreditEventType = "purchase_cashback"
	EventPromotion         CreditEventType = "promotion"
	EventAnniversaryReward CreditEventType = "anniversary_reward"
	EventMonthlyCredit     CreditEventType = "monthly_credit"
	EventManualAdjustment  CreditEventType = "manual_adjustment"
)

// LedgerEntry is one immutable signed-amount store credit movement. A
// member's balance is the sum of their entries; nothing else is
// authoritative.
type LedgerEntry struct {
	ID       string
	TenantID string
	MemberID string

	Amount      decimal.Decimal
	EventType   CreditEventType
	Description string

	// (tenant, member, source_type, source_id) is the dedupe key guarding
	// against redelivered webhooks and rerun schedulers.
	SourceType     string
	SourceID       string
	IdempotencyKey string

	CreatedBy string

	// External sync state. The local row is written first and is the source
	// of truth; sync happens out of band and may fail without invalidating
	// the entry.
	Synced        bool
	ExternalTxnID string
	SyncError     string
	SyncAttempts  int
	SyncedAt      *time.Time

	CreatedAt time.Time
}

type LedgerRepository interface {
	// CreateEntry inserts atomically. For debits it checks the resulting
	// balance under a member row lock unless allowNegative is set, returning
	// ErrInsufficientBalance without inserting. A duplicate dedupe key
	// surfaces as ErrConflict.
	CreateEntry(entry *LedgerEntry, allowNegative bool) error

	FindBySourceKey(tenantID, memberID, sourceType, sourceID string) (*LedgerEntry, error)
	FindByIdempotencyKey(tenantID, key string) (*LedgerEntry, error)
	SumAmount(tenantID, memberID string) (decimal.Decimal, error)
	GetMemberEntries(tenantID, memberID string, limit int) ([]*LedgerEntry, error)

	FindUnsynced(limit int) ([]*LedgerEntry, error)
	MarkSynced(entryID, externalTxnID string, at time.Time) error
	MarkSyncFailed(entryID, reason string) error
}

// StoreCreditAccount is the external credit account collaborator. Credit must
// be idempotent per entry id: retried calls never double-credit.
type StoreCreditAccount interface {
	Credit(memberRef, entryID string, amount decimal.Decimal, note string) (externalTxnID string, err error)
}
