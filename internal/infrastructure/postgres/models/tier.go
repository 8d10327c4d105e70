package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TierModel struct {
	ID            string          `gorm:"primaryKey"`
	TenantID      string          `gorm:"index;not null"`
	Name          string          `gorm:"not null"`
	BonusRate     decimal.Decimal `gorm:"type:numeric(6,4)"`
	MonthlyCredit decimal.Decimal `gorm:"type:numeric(12,2)"`
	DisplayOrder  int
	IsActive      bool `gorm:"index;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
