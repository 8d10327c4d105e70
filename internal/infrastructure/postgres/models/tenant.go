package models

import (
	"time"

	"github.com/tradeup-app/loyalty-service/internal/domain"
)

type TenantModel struct {
	ID         string `gorm:"primaryKey"`
	ShopDomain string `gorm:"uniqueIndex;not null"`
	ShopName   string
	OwnerEmail string
	Settings   domain.TenantSettings `gorm:"serializer:json"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
