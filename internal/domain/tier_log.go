package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ChangeType string

const (
	ChangeAssigned   ChangeType = "assigned"
	ChangeUpgraded   ChangeType = "upgraded"
	ChangeDowngraded ChangeType = "downgraded"
	ChangeRemoved    ChangeType = "removed"
	ChangeExpired    ChangeType = "expired"
	ChangeReverted   ChangeType = "reverted"
)

type ChangeSource string

const (
	SourcePurchase                  ChangeSource = "purchase"
	SourceSubscriptionStarted       ChangeSource = "subscription_started"
	SourceSubscriptionCancelled     ChangeSource = "subscription_cancelled"
	SourceSubscriptionBillingFailed ChangeSource = "subscription_billing_failed"
	SourceStaff                     ChangeSource = "staff"
	SourcePromo                     ChangeSource = "promo"
	SourceEligibility               ChangeSource = "eligibility"
	SourceRefund                    ChangeSource = "refund"
)

// TierChangeLog is an immutable audit row. Rows are append-only and are only
// ever written by the tier engine.
type TierChangeLog struct {
	ID       string
	TenantID string
	MemberID string

	PreviousTierID   *string
	NewTierID        *string
	PreviousTierName string
	NewTierName      string

	ChangeType ChangeType
	SourceType ChangeSource

	// SourceReference locates the originating event, e.g. "order:12345",
	// "subscription:gid://...", "staff:mike@shop.com", "promo:summer-2026".
	SourceReference string
	Reason          string
	OrderTotal      decimal.Decimal

	ExpiresAt *time.Time
	CreatedAt time.Time
	CreatedBy string
}

// TierChangeState is the member state observed under the row lock, handed to
// the decision callback of ApplyTierChange. LatestLog is the most recent log
// row, nil for members with no history.
type TierChangeState struct {
	Member       *Member
	ActiveUsages []*MemberPromoUsage
	LatestLog    *TierChangeLog
}

// TierChangeDecision describes the writes an accepted change performs. All of
// them commit in one transaction. A nil decision is a no-op; a decision with
// a nil Log only performs the promotion bookkeeping.
type TierChangeDecision struct {
	Log *TierChangeLog

	NewTierID     *string
	NewTierName   string
	TierExpiresAt *time.Time

	// Optional promotion bookkeeping committed with the change.
	InsertUsage       *MemberPromoUsage
	IncrementPromoID  string
	UpdateUsageID     string
	UpdateUsageStatus PromoUsageStatus
}

type TierLogRepository interface {
	// ApplyTierChange serializes competing changes for one member: it locks
	// the member row, rereads state, and commits whatever the decide callback
	// returns as a single transaction.
	ApplyTierChange(tenantID, memberID string, decide func(state *TierChangeState) (*TierChangeDecision, error)) (*TierChangeLog, error)

	// FindLogEntryByReference locates the original change carrying the given
	// source reference. Revert rows written for the same reference are
	// excluded, so a refund always resolves to the change it undoes.
	FindLogEntryByReference(tenantID, memberID, sourceReference string) (*TierChangeLog, error)

	// FindRevertByReference returns the most recent revert row for the
	// reference, or ErrNotFound when the reference was never reverted.
	FindRevertByReference(tenantID, memberID, sourceReference string) (*TierChangeLog, error)

	GetMemberHistory(tenantID, memberID string, limit int) ([]*TierChangeLog, error)
}
