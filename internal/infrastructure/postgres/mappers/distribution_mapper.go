package mappers

import (
	"github.com/tradeup-app/loyalty-service/internal/domain"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/postgres/models"
)

func ToDomainDistribution(model *models.PendingDistributionModel) *domain.PendingDistribution {
	return &domain.PendingDistribution{
		ID:                 model.ID,
		TenantID:           model.TenantID,
		Type:               domain.DistributionType(model.Type),
		ReferenceKey:       model.ReferenceKey,
		Status:             domain.DistributionStatus(model.Status),
		Preview:            model.Preview,
		ExpiresAt:          model.ExpiresAt,
		ApprovedAt:         model.ApprovedAt,
		ApprovedBy:         model.ApprovedBy,
		RejectedAt:         model.RejectedAt,
		RejectedBy:         model.RejectedBy,
		RejectionReason:    model.RejectionReason,
		ExecutedAt:         model.ExecutedAt,
		ExecutionResult:    model.ExecutionResult,
		NotificationSentAt: model.NotificationSentAt,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

func ToGORMDistribution(d *domain.PendingDistribution) *models.PendingDistributionModel {
	return &models.PendingDistributionModel{
		ID:                 d.ID,
		TenantID:           d.TenantID,
		Type:               string(d.Type),
		ReferenceKey:       d.ReferenceKey,
		Status:             string(d.Status),
		Preview:            d.Preview,
		ExpiresAt:          d.ExpiresAt,
		ApprovedAt:         d.ApprovedAt,
		ApprovedBy:         d.ApprovedBy,
		RejectedAt:         d.RejectedAt,
		RejectedBy:         d.RejectedBy,
		RejectionReason:    d.RejectionReason,
		ExecutedAt:         d.ExecutedAt,
		ExecutionResult:    d.ExecutionResult,
		NotificationSentAt: d.NotificationSentAt,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

func ToDomainTenant(model *models.TenantModel) *domain.Tenant {
	return &domain.Tenant{
		ID:         model.ID,
		ShopDomain: model.ShopDomain,
		ShopName:   model.ShopName,
		OwnerEmail: model.OwnerEmail,
		Settings:   model.Settings,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

func ToGORMTenant(tenant *domain.Tenant) *models.TenantModel {
	return &models.TenantModel{
		ID:         tenant.ID,
		ShopDomain: tenant.ShopDomain,
		ShopName:   tenant.ShopName,
		OwnerEmail: tenant.OwnerEmail,
		Settings:   tenant.Settings,
		CreatedAt:  tenant.CreatedAt,
		UpdatedAt:  tenant.UpdatedAt,
	}
}
