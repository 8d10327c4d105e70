package ledger

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/tradeup-app/loyalty-service/internal/domain"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/cache"
	publisher "github.com/tradeup-app/loyalty-service/internal/infrastructure/kafka"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/metrics"
)

type LedgerUsecase interface {
	AddEntry(ctx context.Context, input *AddEntryInput) (*domain.LedgerEntry, error)
	GetBalance(ctx context.Context, tenantID, memberID string) (decimal.Decimal, error)
	GetMemberEntries(ctx context.Context, tenantID, memberID string, limit int) ([]*domain.LedgerEntry, error)
	IssueAnniversaryReward(ctx context.Context, input *AnniversaryRewardInput) (*domain.LedgerEntry, error)
	SyncPending(ctx context.Context, limit int) (*SyncReport, error)
}

type DefaultLedgerUsecase struct {
	ledgerRepo domain.LedgerRepository
	tenantRepo domain.TenantRepository

	creditAccount domain.StoreCreditAccount
	balanceCache  *cache.Cache

	kafkaPublisher *publisher.KafkaPublisher
	metrics        *metrics.LoyaltyMetrics
}

func NewDefaultLedgerUsecase(
	ledgerRepo domain.LedgerRepository,
	tenantRepo domain.TenantRepository,
	creditAccount domain.StoreCreditAccount,
	balanceCache *cache.Cache,
	kafkaPublisher *publisher.KafkaPublisher,
	loyaltyMetrics *metrics.LoyaltyMetrics,
) *DefaultLedgerUsecase {
	return &DefaultLedgerUsecase{
		ledgerRepo:     ledgerRepo,
		tenantRepo:     tenantRepo,
		creditAccount:  creditAccount,
		balanceCache:   balanceCache,
		kafkaPublisher: kafkaPublisher,
		metrics:        loyaltyMetrics,
	}
}

func (uc *DefaultLedgerUsecase) notifyEntry(entry *domain.LedgerEntry) {
	if uc.kafkaPublisher == nil || entry == nil {
		return
	}
	go func(event publisher.LedgerEntryEvent) {
		if err := uc.kafkaPublisher.PublishLedgerEntry(event); err != nil {
			slog.Error("failed to publish ledger entry event", "entry_id", event.EntryID, "error", err.Error())
		}
	}(publisher.LedgerEntryEvent{
		EntryID:   entry.ID,
		TenantID:  entry.TenantID,
		MemberID:  entry.MemberID,
		Amount:    entry.Amount.String(),
		EventType: string(entry.EventType),
	})
}

func balanceKey(tenantID, memberID string) string {
	return "balance:" + tenantID + ":" + memberID
}
