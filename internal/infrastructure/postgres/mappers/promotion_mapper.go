package mappers

import (
	"github.com/tradeup-app/loyalty-service/internal/domain"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/postgres/models"
)

func ToDomainPromotion(model *models.TierPromotionModel) *domain.TierPromotion {
	return &domain.TierPromotion{
		ID:                model.ID,
		TenantID:          model.TenantID,
		TierID:            model.TierID,
		Name:              model.Name,
		Code:              model.Code,
		StartsAt:          model.StartsAt,
		EndsAt:            model.EndsAt,
		GrantDurationDays: model.GrantDurationDays,
		MaxUses:           model.MaxUses,
		MaxUsesPerMember:  model.MaxUsesPerMember,
		CurrentUses:       model.CurrentUses,
		Stackable:         model.Stackable,
		UpgradeOnly:       model.UpgradeOnly,
		RevertOnExpire:    model.RevertOnExpire,
		IsActive:          model.IsActive,
		CreatedAt:         model.CreatedAt,
		CreatedBy:         model.CreatedBy,
	}
}

func ToGORMPromotion(promo *domain.TierPromotion) *models.TierPromotionModel {
	return &models.TierPromotionModel{
		ID:                promo.ID,
		TenantID:          promo.TenantID,
		TierID:            promo.TierID,
		Name:              promo.Name,
		Code:              promo.Code,
		StartsAt:          promo.StartsAt,
		EndsAt:            promo.EndsAt,
		GrantDurationDays: promo.GrantDurationDays,
		MaxUses:           promo.MaxUses,
		MaxUsesPerMember:  promo.MaxUsesPerMember,
		CurrentUses:       promo.CurrentUses,
		Stackable:         promo.Stackable,
		UpgradeOnly:       promo.UpgradeOnly,
		RevertOnExpire:    promo.RevertOnExpire,
		IsActive:          promo.IsActive,
		CreatedAt:         promo.CreatedAt,
		CreatedBy:         promo.CreatedBy,
	}
}

func ToDomainPromoUsage(model *models.MemberPromoUsageModel) *domain.MemberPromoUsage {
	return &domain.MemberPromoUsage{
		ID:             model.ID,
		TenantID:       model.TenantID,
		MemberID:       model.MemberID,
		PromotionID:    model.PromotionID,
		AppliedAt:      model.AppliedAt,
		PreviousTierID: model.PreviousTierID,
		ExpiresAt:      model.ExpiresAt,
		Status:         domain.PromoUsageStatus(model.Status),
		RevertedAt:     model.RevertedAt,
	}
}

func ToGORMPromoUsage(usage *domain.MemberPromoUsage) *models.MemberPromoUsageModel {
	return &models.MemberPromoUsageModel{
		ID:             usage.ID,
		TenantID:       usage.TenantID,
		MemberID:       usage.MemberID,
		PromotionID:    usage.PromotionID,
		AppliedAt:      usage.AppliedAt,
		PreviousTierID: usage.PreviousTierID,
		ExpiresAt:      usage.ExpiresAt,
		Status:         string(usage.Status),
		RevertedAt:     usage.RevertedAt,
	}
}

func ToDomainEligibilityRule(model *models.TierEligibilityRuleModel) *domain.TierEligibilityRule {
	return &domain.TierEligibilityRule{
		ID:                model.ID,
		TenantID:          model.TenantID,
		TierID:            model.TierID,
		Name:              model.Name,
		RuleType:          domain.RuleType(model.RuleType),
		Metric:            domain.RuleMetric(model.Metric),
		ThresholdValue:    model.ThresholdValue,
		ThresholdOperator: model.ThresholdOperator,
		TimeWindowDays:    model.TimeWindowDays,
		Priority:          model.Priority,
		IsActive:          model.IsActive,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}

func ToGORMEligibilityRule(rule *domain.TierEligibilityRule) *models.TierEligibilityRuleModel {
	return &models.TierEligibilityRuleModel{
		ID:                rule.ID,
		TenantID:          rule.TenantID,
		TierID:            rule.TierID,
		Name:              rule.Name,
		RuleType:          string(rule.RuleType),
		Metric:            string(rule.Metric),
		ThresholdValue:    rule.ThresholdValue,
		ThresholdOperator: rule.ThresholdOperator,
		TimeWindowDays:    rule.TimeWindowDays,
		Priority:          rule.Priority,
		IsActive:          rule.IsActive,
		CreatedAt:         rule.CreatedAt,
		UpdatedAt:         rule.UpdatedAt,
	}
}
