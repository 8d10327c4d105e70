package repository

import (
	"errors"

	"github.com/tradeup-app/loyalty-service/internal/domain"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/postgres/mappers"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultTierRepository struct {
	DB *gorm.DB
}

func NewDefaultTierRepository(db *gorm.DB) *DefaultTierRepository {
	return &DefaultTierRepository{DB: db}
}

func (r *DefaultTierRepository) GetTierByID(tenantID, tierID string) (*domain.Tier, error) {
	var tier models.TierModel
	if err := r.DB.First(&tier, "tenant_id = ? AND id = ?", tenantID, tierID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return mappers.ToDomainTier(&tier), nil
}

func (r *DefaultTierRepository) GetActiveTiers(tenantID string) ([]*domain.Tier, error) {
	var tierModels []models.TierModel
	if err := r.DB.
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("display_order ASC").
		Find(&tierModels).Error; err != nil {
		return nil, err
	}

	tiers := make([]*domain.Tier, len(tierModels))
	for i, tierModel := range tierModels {
		tiers[i] = mappers.ToDomainTier(&tierModel)
	}
	return tiers, nil
}
