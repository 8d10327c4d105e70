package repository

import (
	"encoding/json"
	"errors"

	"github.com/tradeup-app/loyalty-service/internal/domain"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/postgres/mappers"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultTenantRepository struct {
	DB *gorm.DB
}

func NewDefaultTenantRepository(db *gorm.DB) *DefaultTenantRepository {
	return &DefaultTenantRepository{DB: db}
}

func (r *DefaultTenantRepository) GetTenantByID(tenantID string) (*domain.Tenant, error) {
	var tenantModel models.TenantModel
	if err := r.DB.First(&tenantModel, "id = ?", tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return mappers.ToDomainTenant(&tenantModel), nil
}

func (r *DefaultTenantRepository) GetTenants() ([]*domain.Tenant, error) {
	var tenantModels []models.TenantModel
	if err := r.DB.Order("created_at ASC").Find(&tenantModels).Error; err != nil {
		return nil, err
	}

	tenants := make([]*domain.Tenant, len(tenantModels))
	for i, tenantModel := range tenantModels {
		tenants[i] = mappers.ToDomainTenant(&tenantModel)
	}
	return tenants, nil
}

func (r *DefaultTenantRepository) UpdateSettings(tenantID string, settings domain.TenantSettings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	res := r.DB.Model(&models.TenantModel{}).
		Where("id = ?", tenantID).
		Update("settings", string(payload))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
