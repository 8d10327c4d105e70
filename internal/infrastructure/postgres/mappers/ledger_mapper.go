package mappers

import (
	"github.com/tradeup-app/loyalty-service/internal/domain"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/postgres/models"
)

func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ToDomainLedgerEntry(model *models.LedgerEntryModel) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		ID:             model.ID,
		TenantID:       model.TenantID,
		MemberID:       model.MemberID,
		Amount:         model.Amount,
		EventType:      domain.CreditEventType(model.EventType),
		Description:    model.Description,
		SourceType:     derefStr(model.SourceType),
		SourceID:       derefStr(model.SourceID),
		IdempotencyKey: derefStr(model.IdempotencyKey),
		CreatedBy:      model.CreatedBy,
		Synced:         model.Synced,
		ExternalTxnID:  model.ExternalTxnID,
		SyncError:      model.SyncError,
		SyncAttempts:   model.SyncAttempts,
		SyncedAt:       model.SyncedAt,
		CreatedAt:      model.CreatedAt,
	}
}

func ToGORMLedgerEntry(entry *domain.LedgerEntry) *models.LedgerEntryModel {
	return &models.LedgerEntryModel{
		ID:             entry.ID,
		TenantID:       entry.TenantID,
		MemberID:       entry.MemberID,
		Amount:         entry.Amount,
		EventType:      string(entry.EventType),
		Description:    entry.Description,
		SourceType:     strOrNil(entry.SourceType),
		SourceID:       strOrNil(entry.SourceID),
		IdempotencyKey: strOrNil(entry.IdempotencyKey),
		CreatedBy:      entry.CreatedBy,
		Synced:         entry.Synced,
		ExternalTxnID:  entry.ExternalTxnID,
		SyncError:      entry.SyncError,
		SyncAttempts:   entry.SyncAttempts,
		SyncedAt:       entry.SyncedAt,
		CreatedAt:      entry.CreatedAt,
	}
}
