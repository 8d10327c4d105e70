package repository

import (
	"errors"
	"time"

	"github.com/tradeup-app/loyalty-service/internal/domain"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/postgres/mappers"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultPromotionRepository struct {
	DB *gorm.DB
}

func NewDefaultPromotionRepository(db *gorm.DB) *DefaultPromotionRepository {
	return &DefaultPromotionRepository{DB: db}
}

func (r *DefaultPromotionRepository) GetPromotionByID(tenantID, promoID string) (*domain.TierPromotion, error) {
	var promoModel models.TierPromotionModel
	if err := r.DB.First(&promoModel, "tenant_id = ? AND id = ?", tenantID, promoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return mappers.ToDomainPromotion(&promoModel), nil
}

func (r *DefaultPromotionRepository) GetPromotionByCode(tenantID, code string) (*domain.TierPromotion, error) {
	var promoModel models.TierPromotionModel
	if err := r.DB.First(&promoModel, "tenant_id = ? AND code = ?", tenantID, code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return mappers.ToDomainPromotion(&promoModel), nil
}

func (r *DefaultPromotionRepository) GetUsage(tenantID, memberID, promoID string) (*domain.MemberPromoUsage, error) {
	var usageModel models.MemberPromoUsageModel
	if err := r.DB.
		First(&usageModel, "tenant_id = ? AND member_id = ? AND promotion_id = ?", tenantID, memberID, promoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return mappers.ToDomainPromoUsage(&usageModel), nil
}

func (r *DefaultPromotionRepository) FindExpiredActiveUsages(tenantID string, now time.Time) ([]*domain.MemberPromoUsage, error) {
	var usageModels []models.MemberPromoUsageModel
	if err := r.DB.
		Where("tenant_id = ?", tenantID).
		Where("status = ?", string(domain.UsageActive)).
		Where("expires_at IS NOT NULL").
		Where("expires_at <= ?", now).
		Find(&usageModels).Error; err != nil {
		return nil, err
	}

	usages := make([]*domain.MemberPromoUsage, len(usageModels))
	for i, usageModel := range usageModels {
		usages[i] = mappers.ToDomainPromoUsage(&usageModel)
	}
	return usages, nil
}

type DefaultEligibilityRuleRepository struct {
	DB *gorm.DB
}

func NewDefaultEligibilityRuleRepository(db *gorm.DB) *DefaultEligibilityRuleRepository {
	return &DefaultEligibilityRuleRepository{DB: db}
}

func (r *DefaultEligibilityRuleRepository) GetActiveRules(tenantID string) ([]*domain.TierEligibilityRule, error) {
	var ruleModels []models.TierEligibilityRuleModel
	if err := r.DB.
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("priority DESC").
		Find(&ruleModels).Error; err != nil {
		return nil, err
	}

	rules := make([]*domain.TierEligibilityRule, len(ruleModels))
	for i, ruleModel := range ruleModels {
		rules[i] = mappers.ToDomainEligibilityRule(&ruleModel)
	}
	return rules, nil
}
