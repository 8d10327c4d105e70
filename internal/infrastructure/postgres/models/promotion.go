package models

import "time"

type TierPromotionModel struct {
	ID       string `gorm:"primaryKey"`
	TenantID string `gorm:"index;not null"`
	TierID   string `gorm:"not null"`

	Name string `gorm:"not null"`
	Code string `gorm:"index"`

	StartsAt time.Time
	EndsAt   time.Time

	GrantDurationDays int

	MaxUses          int
	MaxUsesPerMember int `gorm:"default:1"`
	CurrentUses      int

	Stackable      bool
	UpgradeOnly    bool `gorm:"default:true"`
	RevertOnExpire bool `gorm:"default:true"`
	IsActive       bool `gorm:"index;default:true"`

	CreatedAt time.Time
	CreatedBy string
}

type MemberPromoUsageModel struct {
	ID          string `gorm:"primaryKey"`
	TenantID    string `gorm:"index;not null"`
	MemberID    string `gorm:"uniqueIndex:uq_member_promotion;not null"`
	PromotionID string `gorm:"uniqueIndex:uq_member_promotion;not null"`

	AppliedAt      time.Time
	PreviousTierID *string
	ExpiresAt      *time.Time `gorm:"index"`
	Status         string     `gorm:"index;default:active"`
	RevertedAt     *time.Time
}
