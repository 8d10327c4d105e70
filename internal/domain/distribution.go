package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DistributionStatus string

const (
	DistributionPending  DistributionStatus = "pending"
	DistributionApproved DistributionStatus = "approved"
	DistributionRejected DistributionStatus = "rejected"
	DistributionExpired  DistributionStatus = "expired"
)

type DistributionType string

const (
	DistributionMonthlyCredit DistributionType = "monthly_credit"
)

type TierBreakdown struct {
	Tier   string          `json:"tier"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type PlannedCredit struct {
	MemberID string          `json:"member_id"`
	Tier     string          `json:"tier"`
	Amount   decimal.Decimal `json:"amount"`
}

// DistributionPreview is snapshotted at creation time by the same planner
// used at execution, so what the merchant approves is what will run.
type DistributionPreview struct {
	TotalMembers int             `json:"total_members"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Skipped      int             `json:"skipped"`
	ByTier       []TierBreakdown `json:"by_tier"`
	Members      []PlannedCredit `json:"members"`
	CalculatedAt time.Time       `json:"calculated_at"`
}

type ExecutionResult struct {
	Credited    int             `json:"credited"`
	Skipped     int             `json:"skipped"`
	Errors      []string        `json:"errors,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ExecutedAt  time.Time       `json:"executed_at"`
}

// PendingDistribution is a proposed bulk credit issuance awaiting approval.
// Status moves pending -> approved | rejected | expired and never back.
type PendingDistribution struct {
	ID           string
	TenantID     string
	Type         DistributionType
	ReferenceKey string
	Status       DistributionStatus

	Preview *DistributionPreview

	ExpiresAt time.Time

	ApprovedAt      *time.Time
	ApprovedBy      string
	RejectedAt      *time.Time
	RejectedBy      string
	RejectionReason string

	ExecutedAt      *time.Time
	ExecutionResult *ExecutionResult

	NotificationSentAt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (d *PendingDistribution) IsExpired(now time.Time) bool {
	return now.After(d.ExpiresAt)
}

type DistributionRepository interface {
	// CreateDistribution inserts the row, failing with ErrConflict when a
	// pending or approved distribution already holds (tenant, reference_key).
	CreateDistribution(d *PendingDistribution) error

	GetDistributionByID(tenantID, id string) (*PendingDistribution, error)
	GetDistributions(tenantID string, status DistributionStatus, includeExpired bool) ([]*PendingDistribution, error)

	// HasApprovedBefore reports whether any distribution for the tenant has
	// ever reached approved, the evidence the auto-approve bootstrap wants.
	HasApprovedBefore(tenantID string) (bool, error)

	// Status transitions guard on the current status being pending, so a
	// second flip of an already-terminal row is a no-op reported via the
	// returned bool.
	MarkApproved(tenantID, id, approver string, result *ExecutionResult, at time.Time) (bool, error)
	MarkRejected(tenantID, id, rejector, reason string, at time.Time) (bool, error)
	MarkExpired(tenantID, id string) (bool, error)

	FindExpiredPending(now time.Time) ([]*PendingDistribution, error)
}
