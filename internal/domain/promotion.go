package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TierPromotion struct {
	ID       string
	TenantID string
	TierID   string

	Name string
	Code string

	StartsAt time.Time
	EndsAt   time.Time

	// GrantDurationDays is how long the member keeps the tier; zero means
	// until the promotion itself ends.
	GrantDurationDays int

	MaxUses          int // zero = unlimited
	MaxUsesPerMember int
	CurrentUses      int

	Stackable      bool
	UpgradeOnly    bool
	RevertOnExpire bool
	IsActive       bool

	CreatedAt time.Time
	CreatedBy string
}

// IsCurrentlyActive reports whether the promotion is running at t and has
// uses remaining.
func (p *TierPromotion) IsCurrentlyActive(t time.Time) bool {
	if !p.IsActive {
		return false
	}
	if t.Before(p.StartsAt) || t.After(p.EndsAt) {
		return false
	}
	return p.MaxUses == 0 || p.CurrentUses < p.MaxUses
}

type PromoUsageStatus string

const (
	UsageActive   PromoUsageStatus = "active"
	UsageExpired  PromoUsageStatus = "expired"
	UsageReverted PromoUsageStatus = "reverted"
	UsageUpgraded PromoUsageStatus = "upgraded"
)

// MemberPromoUsage records one member redeeming one promotion. The pair
// (member, promotion) is unique, which is what prevents double redemption.
type MemberPromoUsage struct {
	ID          string
	TenantID    string
	MemberID    string
	PromotionID string

	AppliedAt      time.Time
	PreviousTierID *string
	ExpiresAt      *time.Time
	Status         PromoUsageStatus
	RevertedAt     *time.Time
}

type PromotionRepository interface {
	GetPromotionByID(tenantID, promoID string) (*TierPromotion, error)
	GetPromotionByCode(tenantID, code string) (*TierPromotion, error)
	GetUsage(tenantID, memberID, promoID string) (*MemberPromoUsage, error)
	FindExpiredActiveUsages(tenantID string, now time.Time) ([]*MemberPromoUsage, error)
}

type RuleType string

const (
	RuleQualification RuleType = "qualification"
	RuleMaintenance   RuleType = "maintenance"
	RuleUpgrade       RuleType = "upgrade"
	RuleDowngrade     RuleType = "downgrade"
)

type RuleMetric string

const (
	MetricTotalSpend   RuleMetric = "total_spend"
	MetricTradeInCount RuleMetric = "trade_in_count"
	MetricTradeInValue RuleMetric = "trade_in_value"
	MetricOrderCount   RuleMetric = "order_count"
)

type TierEligibilityRule struct {
	ID       string
	TenantID string
	TierID   string

	Name     string
	RuleType RuleType

	Metric            RuleMetric
	ThresholdValue    decimal.Decimal
	ThresholdOperator string // ">=", ">", "<=", "<", "=="
	TimeWindowDays    int    // zero = all-time

	Priority int
	IsActive bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Satisfied evaluates the rule threshold against a metric value.
func (r *TierEligibilityRule) Satisfied(value decimal.Decimal) bool {
	switch r.ThresholdOperator {
	case ">":
		return value.GreaterThan(r.ThresholdValue)
	case "<=":
		return value.LessThanOrEqual(r.ThresholdValue)
	case "<":
		return value.LessThan(r.ThresholdValue)
	case "==":
		return value.Equal(r.ThresholdValue)
	default:
		return value.GreaterThanOrEqual(r.ThresholdValue)
	}
}

type EligibilityRuleRepository interface {
	GetActiveRules(tenantID string) ([]*TierEligibilityRule, error)
}
