package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Tier struct {
	ID            string
	TenantID      string
	Name          string
	BonusRate     decimal.Decimal
	MonthlyCredit decimal.Decimal
	DisplayOrder  int
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type TierRepository interface {
	GetTierByID(tenantID, tierID string) (*Tier, error)
	GetActiveTiers(tenantID string) ([]*Tier, error)
}
