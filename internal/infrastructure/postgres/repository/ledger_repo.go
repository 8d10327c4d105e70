package repository

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradeup-app/loyalty-service/internal/domain"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/postgres/mappers"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultLedgerRepository struct {
	DB *gorm.DB
}

func NewDefaultLedgerRepository(db *gorm.DB) *DefaultLedgerRepository {
	return &DefaultLedgerRepository{DB: db}
}

// CreateEntry inserts one ledger row. Debits take the member row lock and
// recheck the balance inside the same transaction, so two concurrent debits
// cannot both pass the check. Unique-index hits on the dedupe keys surface
// as domain.ErrConflict for the usecase to resolve to the existing row.
func (r *DefaultLedgerRepository) CreateEntry(entry *domain.LedgerEntry, allowNegative bool) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if entry.Amount.IsNegative() && !allowNegative {
			var memberModel models.MemberModel
			if err := forUpdate(tx).First(&memberModel, "tenant_id = ? AND id = ?", entry.TenantID, entry.MemberID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrNotFound
				}
				return err
			}

			balance, err := sumAmount(tx, entry.TenantID, entry.MemberID)
			if err != nil {
				return err
			}
			if balance.Add(entry.Amount).IsNegative() {
				return domain.ErrInsufficientBalance
			}
		}

		if err := tx.Create(mappers.ToGORMLedgerEntry(entry)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrConflict
			}
			return err
		}
		return nil
	})
}

func sumAmount(tx *gorm.DB, tenantID, memberID string) (decimal.Decimal, error) {
	row := tx.Model(&models.LedgerEntryModel{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("tenant_id = ? AND member_id = ?", tenantID, memberID).
		Row()

	var balance decimal.Decimal
	if err := row.Scan(&balance); err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

func (r *DefaultLedgerRepository) SumAmount(tenantID, memberID string) (decimal.Decimal, error) {
	return sumAmount(r.DB, tenantID, memberID)
}

func (r *DefaultLedgerRepository) FindBySourceKey(tenantID, memberID, sourceType, sourceID string) (*domain.LedgerEntry, error) {
	var entryModel models.LedgerEntryModel
	if err := r.DB.
		Where("tenant_id = ? AND member_id = ? AND source_type = ? AND source_id = ?",
			tenantID, memberID, sourceType, sourceID).
		First(&entryModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return mappers.ToDomainLedgerEntry(&entryModel), nil
}

func (r *DefaultLedgerRepository) FindByIdempotencyKey(tenantID, key string) (*domain.LedgerEntry, error) {
	var entryModel models.LedgerEntryModel
	if err := r.DB.
		Where("tenant_id = ? AND idempotency_key = ?", tenantID, key).
		First(&entryModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return mappers.ToDomainLedgerEntry(&entryModel), nil
}

func (r *DefaultLedgerRepository) GetMemberEntries(tenantID, memberID string, limit int) ([]*domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	var entryModels []models.LedgerEntryModel
	if err := r.DB.
		Where("tenant_id = ? AND member_id = ?", tenantID, memberID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]*domain.LedgerEntry, len(entryModels))
	for i, entryModel := range entryModels {
		entries[i] = mappers.ToDomainLedgerEntry(&entryModel)
	}
	return entries, nil
}

func (r *DefaultLedgerRepository) FindUnsynced(limit int) ([]*domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	var entryModels []models.LedgerEntryModel
	if err := r.DB.
		Where("synced = ?", false).
		Order("created_at ASC").
		Limit(limit).
		Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]*domain.LedgerEntry, len(entryModels))
	for i, entryModel := range entryModels {
		entries[i] = mappers.ToDomainLedgerEntry(&entryModel)
	}
	return entries, nil
}

func (r *DefaultLedgerRepository) MarkSynced(entryID, externalTxnID string, at time.Time) error {
	return r.DB.Model(&models.LedgerEntryModel{}).
		Where("id = ?", entryID).
		Updates(map[string]interface{}{
			"synced":          true,
			"external_txn_id": externalTxnID,
			"sync_error":      "",
			"synced_at":       at,
		}).Error
}

func (r *DefaultLedgerRepository) MarkSyncFailed(entryID, reason string) error {
	return r.DB.Model(&models.LedgerEntryModel{}).
		Where("id = ?", entryID).
		Updates(map[string]interface{}{
			"sync_error":    reason,
			"sync_attempts": gorm.Expr("sync_attempts + 1"),
		}).Error
}
