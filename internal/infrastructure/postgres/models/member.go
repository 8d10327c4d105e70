package models

import "time"

type MemberModel struct {
	ID           string `gorm:"primaryKey"`
	TenantID     string `gorm:"index;not null"`
	MemberNumber string `gorm:"index"`
	Email        string `gorm:"index"`
	Name         string
	Status       string `gorm:"index;default:active"`

	TierID         *string `gorm:"index"`
	TierName       string
	TierAssignedAt *time.Time
	TierExpiresAt  *time.Time `gorm:"index"`

	MembershipStartDate *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
