package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TierEligibilityRuleModel struct {
	ID       string `gorm:"primaryKey"`
	TenantID string `gorm:"index;not null"`
	TierID   string `gorm:"not null"`

	Name     string `gorm:"not null"`
	RuleType string `gorm:"not null"`

	Metric            string          `gorm:"not null"`
	ThresholdValue    decimal.Decimal `gorm:"type:numeric(12,2)"`
	ThresholdOperator string          `gorm:"default:>="`
	TimeWindowDays    int

	Priority int
	IsActive bool `gorm:"index;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
