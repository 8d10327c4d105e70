package repository

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/tradeup-app/loyalty-service/internal/domain"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/postgres/mappers"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultDistributionRepository struct {
	DB *gorm.DB
}

func NewDefaultDistributionRepository(db *gorm.DB) *DefaultDistributionRepository {
	return &DefaultDistributionRepository{DB: db}
}

// CreateDistribution inserts the row after checking that no pending or
// approved distribution already holds (tenant, reference_key). The check and
// the insert run in one transaction with the existing rows locked, so two
// concurrent creates for the same key cannot both pass. The partial unique
// index on live keys backstops the check.
func (r *DefaultDistributionRepository) CreateDistribution(d *domain.PendingDistribution) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var live []models.PendingDistributionModel
		if err := liveDistributionsForKey(forUpdate(tx), d.TenantID, d.ReferenceKey).
			Find(&live).Error; err != nil {
			return err
		}
		if len(live) > 0 {
			return domain.ErrConflict
		}
		if err := tx.Create(mappers.ToGORMDistribution(d)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrConflict
			}
			return err
		}
		return nil
	})
}

// liveDistributionsForKey selects the pending or approved rows holding
// (tenant, reference_key). Row locking, not count(*), so the selection can
// carry FOR UPDATE on postgres.
func liveDistributionsForKey(tx *gorm.DB, tenantID, referenceKey string) *gorm.DB {
	return tx.Model(&models.PendingDistributionModel{}).
		Where("tenant_id = ? AND reference_key = ? AND status IN ?",
			tenantID, referenceKey,
			[]string{string(domain.DistributionPending), string(domain.DistributionApproved)})
}

func (r *DefaultDistributionRepository) GetDistributionByID(tenantID, id string) (*domain.PendingDistribution, error) {
	var model models.PendingDistributionModel
	if err := r.DB.First(&model, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return mappers.ToDomainDistribution(&model), nil
}

func (r *DefaultDistributionRepository) GetDistributions(tenantID string, status domain.DistributionStatus, includeExpired bool) ([]*domain.PendingDistribution, error) {
	query := r.DB.Where("tenant_id = ?", tenantID)
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	if !includeExpired {
		query = query.Where("status <> ?", string(domain.DistributionExpired))
	}

	var distModels []models.PendingDistributionModel
	if err := query.Order("created_at DESC").Find(&distModels).Error; err != nil {
		return nil, err
	}

	distributions := make([]*domain.PendingDistribution, len(distModels))
	for i, distModel := range distModels {
		distributions[i] = mappers.ToDomainDistribution(&distModel)
	}
	return distributions, nil
}

func (r *DefaultDistributionRepository) HasApprovedBefore(tenantID string) (bool, error) {
	var count int64
	err := r.DB.Model(&models.PendingDistributionModel{}).
		Where("tenant_id = ? AND status = ?", tenantID, string(domain.DistributionApproved)).
		Count(&count).Error
	return count > 0, err
}

// MarkApproved flips pending -> approved. The status guard in the WHERE
// clause makes a second flip a no-op, reported through the returned bool.
func (r *DefaultDistributionRepository) MarkApproved(tenantID, id, approver string, result *domain.ExecutionResult, at time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":      string(domain.DistributionApproved),
		"approved_at": at,
		"approved_by": approver,
		"updated_at":  at,
	}
	if result != nil {
		payload, err := json.Marshal(result)
		if err != nil {
			return false, err
		}
		updates["executed_at"] = result.ExecutedAt
		updates["execution_result"] = string(payload)
	}

	res := r.DB.Model(&models.PendingDistributionModel{}).
		Where("tenant_id = ? AND id = ? AND status = ?", tenantID, id, string(domain.DistributionPending)).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (r *DefaultDistributionRepository) MarkRejected(tenantID, id, rejector, reason string, at time.Time) (bool, error) {
	res := r.DB.Model(&models.PendingDistributionModel{}).
		Where("tenant_id = ? AND id = ? AND status = ?", tenantID, id, string(domain.DistributionPending)).
		Updates(map[string]interface{}{
			"status":           string(domain.DistributionRejected),
			"rejected_at":      at,
			"rejected_by":      rejector,
			"rejection_reason": reason,
			"updated_at":       at,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *DefaultDistributionRepository) MarkExpired(tenantID, id string) (bool, error) {
	res := r.DB.Model(&models.PendingDistributionModel{}).
		Where("tenant_id = ? AND id = ? AND status = ?", tenantID, id, string(domain.DistributionPending)).
		Update("status", string(domain.DistributionExpired))
	return res.RowsAffected > 0, res.Error
}

func (r *DefaultDistributionRepository) FindExpiredPending(now time.Time) ([]*domain.PendingDistribution, error) {
	var distModels []models.PendingDistributionModel
	if err := r.DB.
		Where("status = ? AND expires_at < ?", string(domain.DistributionPending), now).
		Find(&distModels).Error; err != nil {
		return nil, err
	}

	distributions := make([]*domain.PendingDistribution, len(distModels))
	for i, distModel := range distModels {
		distributions[i] = mappers.ToDomainDistribution(&distModel)
	}
	return distributions, nil
}
