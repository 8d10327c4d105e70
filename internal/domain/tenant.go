package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AutomationSettings gates unattended distribution approval. Auto-approve is
// only honored after the tenant's first distribution was approved by a human.
type AutomationSettings struct {
	MonthlyCreditAutoApprove    bool             `json:"monthly_credit_auto_approve"`
	FirstMonthlyCreditCompleted bool             `json:"first_monthly_credit_completed"`
	NotificationEmails          []string         `json:"notification_emails,omitempty"`
	AutoApproveThreshold        *decimal.Decimal `json:"auto_approve_threshold,omitempty"`
}

type AnniversarySettings struct {
	Enabled      bool            `json:"enabled"`
	RewardAmount decimal.Decimal `json:"reward_amount"`
	Message      string          `json:"message,omitempty"`
}

type TenantSettings struct {
	Automation  AutomationSettings  `json:"automation"`
	Anniversary AnniversarySettings `json:"anniversary"`
}

type Tenant struct {
	ID         string
	ShopDomain string
	ShopName   string
	OwnerEmail string
	Settings   TenantSettings
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type TenantRepository interface {
	GetTenantByID(tenantID string) (*Tenant, error)
	GetTenants() ([]*Tenant, error)
	UpdateSettings(tenantID string, settings TenantSettings) error
}
