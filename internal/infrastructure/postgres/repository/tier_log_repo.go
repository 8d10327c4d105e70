package repository

import (
	"errors"
	"time"

	"github.com/tradeup-app/loyalty-service/internal/domain"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/postgres/mappers"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultTierLogRepository struct {
	DB *gorm.DB
}

func NewDefaultTierLogRepository(db *gorm.DB) *DefaultTierLogRepository {
	return &DefaultTierLogRepository{DB: db}
}

// ApplyTierChange locks the member row, hands the fresh state to the decide
// callback and commits the returned writes as one transaction. Concurrent
// changes for the same member queue up on the lock, so every decision sees
// the previous one applied.
func (r *DefaultTierLogRepository) ApplyTierChange(
	tenantID, memberID string,
	decide func(state *domain.TierChangeState) (*domain.TierChangeDecision, error),
) (*domain.TierChangeLog, error) {
	var written *domain.TierChangeLog

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var memberModel models.MemberModel
		if err := forUpdate(tx).First(&memberModel, "tenant_id = ? AND id = ?", tenantID, memberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		var usageModels []models.MemberPromoUsageModel
		if err := tx.
			Where("tenant_id = ? AND member_id = ? AND status = ?", tenantID, memberID, string(domain.UsageActive)).
			Find(&usageModels).Error; err != nil {
			return err
		}
		usages := make([]*domain.MemberPromoUsage, len(usageModels))
		for i, usageModel := range usageModels {
			usages[i] = mappers.ToDomainPromoUsage(&usageModel)
		}

		var latest *domain.TierChangeLog
		var latestModel models.TierChangeLogModel
		err := tx.
			Where("tenant_id = ? AND member_id = ?", tenantID, memberID).
			Order("created_at DESC").
			First(&latestModel).Error
		switch {
		case err == nil:
			latest = mappers.ToDomainChangeLog(&latestModel)
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return err
		}

		decision, err := decide(&domain.TierChangeState{
			Member:       mappers.ToDomainMember(&memberModel),
			ActiveUsages: usages,
			LatestLog:    latest,
		})
		if err != nil {
			return err
		}
		if decision == nil {
			// Superseded or disallowed change: nothing to write.
			return nil
		}

		// A decision without a log row only touches promo bookkeeping and
		// leaves the member's tier fields alone.
		if decision.Log != nil {
			if err := tx.Create(mappers.ToGORMChangeLog(decision.Log)).Error; err != nil {
				return err
			}

			memberUpdates := map[string]interface{}{
				"tier_id":         decision.NewTierID,
				"tier_name":       decision.NewTierName,
				"tier_expires_at": decision.TierExpiresAt,
				"updated_at":      decision.Log.CreatedAt,
			}
			if decision.NewTierID != nil {
				memberUpdates["tier_assigned_at"] = decision.Log.CreatedAt
			} else {
				memberUpdates["tier_assigned_at"] = nil
			}
			if err := tx.Model(&models.MemberModel{}).
				Where("tenant_id = ? AND id = ?", tenantID, memberID).
				Updates(memberUpdates).Error; err != nil {
				return err
			}
		}

		if decision.InsertUsage != nil {
			if err := tx.Create(mappers.ToGORMPromoUsage(decision.InsertUsage)).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return domain.ErrConflict
				}
				return err
			}
		}

		if decision.IncrementPromoID != "" {
			if err := tx.Model(&models.TierPromotionModel{}).
				Where("tenant_id = ? AND id = ?", tenantID, decision.IncrementPromoID).
				UpdateColumn("current_uses", gorm.Expr("current_uses + 1")).Error; err != nil {
				return err
			}
		}

		if decision.UpdateUsageID != "" {
			usageUpdates := map[string]interface{}{"status": string(decision.UpdateUsageStatus)}
			if decision.UpdateUsageStatus == domain.UsageReverted || decision.UpdateUsageStatus == domain.UsageExpired {
				usageUpdates["reverted_at"] = time.Now().UTC()
			}
			if err := tx.Model(&models.MemberPromoUsageModel{}).
				Where("tenant_id = ? AND id = ?", tenantID, decision.UpdateUsageID).
				Updates(usageUpdates).Error; err != nil {
				return err
			}
		}

		written = decision.Log
		return nil
	})
	if err != nil {
		return nil, err
	}
	return written, nil
}

// FindLogEntryByReference returns the most recent non-revert log row carrying
// the given source reference, e.g. "order:12345". Refund handling uses this
// to find the tier recorded before the original purchase; excluding revert
// rows keeps a redelivered refund from resolving to its own earlier revert.
func (r *DefaultTierLogRepository) FindLogEntryByReference(tenantID, memberID, sourceReference string) (*domain.TierChangeLog, error) {
	var logModel models.TierChangeLogModel
	if err := r.DB.
		Where("tenant_id = ? AND member_id = ? AND source_reference = ? AND change_type <> ?",
			tenantID, memberID, sourceReference, string(domain.ChangeReverted)).
		Order("created_at DESC").
		First(&logModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return mappers.ToDomainChangeLog(&logModel), nil
}

func (r *DefaultTierLogRepository) FindRevertByReference(tenantID, memberID, sourceReference string) (*domain.TierChangeLog, error) {
	var logModel models.TierChangeLogModel
	if err := r.DB.
		Where("tenant_id = ? AND member_id = ? AND source_reference = ? AND change_type = ?",
			tenantID, memberID, sourceReference, string(domain.ChangeReverted)).
		Order("created_at DESC").
		First(&logModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return mappers.ToDomainChangeLog(&logModel), nil
}

func (r *DefaultTierLogRepository) GetMemberHistory(tenantID, memberID string, limit int) ([]*domain.TierChangeLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logModels []models.TierChangeLogModel
	if err := r.DB.
		Where("tenant_id = ? AND member_id = ?", tenantID, memberID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logModels).Error; err != nil {
		return nil, err
	}

	logs := make([]*domain.TierChangeLog, len(logModels))
	for i, logModel := range logModels {
		logs[i] = mappers.ToDomainChangeLog(&logModel)
	}
	return logs, nil
}
