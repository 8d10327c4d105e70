package mappers

import (
	"github.com/tradeup-app/loyalty-service/internal/domain"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/postgres/models"
)

func ToDomainTier(model *models.TierModel) *domain.Tier {
	return &domain.Tier{
		ID:            model.ID,
		TenantID:      model.TenantID,
		Name:          model.Name,
		BonusRate:     model.BonusRate,
		MonthlyCredit: model.MonthlyCredit,
		DisplayOrder:  model.DisplayOrder,
		IsActive:      model.IsActive,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

func ToGORMTier(tier *domain.Tier) *models.TierModel {
	return &models.TierModel{
		ID:            tier.ID,
		TenantID:      tier.TenantID,
		Name:          tier.Name,
		BonusRate:     tier.BonusRate,
		MonthlyCredit: tier.MonthlyCredit,
		DisplayOrder:  tier.DisplayOrder,
		IsActive:      tier.IsActive,
		CreatedAt:     tier.CreatedAt,
		UpdatedAt:     tier.UpdatedAt,
	}
}

func ToDomainChangeLog(model *models.TierChangeLogModel) *domain.TierChangeLog {
	return &domain.TierChangeLog{
		ID:               model.ID,
		TenantID:         model.TenantID,
		MemberID:         model.MemberID,
		PreviousTierID:   model.PreviousTierID,
		NewTierID:        model.NewTierID,
		PreviousTierName: model.PreviousTierName,
		NewTierName:      model.NewTierName,
		ChangeType:       domain.ChangeType(model.ChangeType),
		SourceType:       domain.ChangeSource(model.SourceType),
		SourceReference:  model.SourceReference,
		Reason:           model.Reason,
		OrderTotal:       model.OrderTotal,
		ExpiresAt:        model.ExpiresAt,
		CreatedAt:        model.CreatedAt,
		CreatedBy:        model.CreatedBy,
	}
}

func ToGORMChangeLog(log *domain.TierChangeLog) *models.TierChangeLogModel {
	return &models.TierChangeLogModel{
		ID:               log.ID,
		TenantID:         log.TenantID,
		MemberID:         log.MemberID,
		PreviousTierID:   log.PreviousTierID,
		NewTierID:        log.NewTierID,
		PreviousTierName: log.PreviousTierName,
		NewTierName:      log.NewTierName,
		ChangeType:       string(log.ChangeType),
		SourceType:       string(log.SourceType),
		SourceReference:  log.SourceReference,
		Reason:           log.Reason,
		OrderTotal:       log.OrderTotal,
		ExpiresAt:        log.ExpiresAt,
		CreatedAt:        log.CreatedAt,
		CreatedBy:        log.CreatedBy,
	}
}
