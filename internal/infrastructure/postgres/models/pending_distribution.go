package models

import (
	"time"

	"github.com/tradeup-app/loyalty-service/internal/domain"
)

type PendingDistributionModel struct {
	ID           string `gorm:"primaryKey"`
	TenantID     string `gorm:"index:idx_distributions_tenant_key;not null"`
	Type         string `gorm:"not null"`
	ReferenceKey string `gorm:"index:idx_distributions_tenant_key;not null"`
	Status       string `gorm:"index;default:pending"`

	Preview *domain.DistributionPreview `gorm:"serializer:json"`

	ExpiresAt time.Time `gorm:"index"`

	ApprovedAt      *time.Time
	ApprovedBy      string
	RejectedAt      *time.Time
	RejectedBy      string
	RejectionReason string

	ExecutedAt      *time.Time
	ExecutionResult *domain.ExecutionResult `gorm:"serializer:json"`

	NotificationSentAt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
