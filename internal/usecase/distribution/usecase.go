package distribution

import (
	"context"
	"log/slog"
	"time"

	"github.com/tradeup-app/loyalty-service/internal/domain"
	publisher "github.com/tradeup-app/loyalty-service/internal/infrastructure/kafka"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/metrics"
	"github.com/tradeup-app/loyalty-service/internal/usecase/ledger"
)

type DistributionUsecase interface {
	CreateMonthlyCredit(ctx context.Context, tenantID string, period time.Time) (*domain.PendingDistribution, error)
	Approve(ctx context.Context, input *ApproveInput) (*domain.PendingDistribution, error)
	Reject(ctx context.Context, input *RejectInput) (*domain.PendingDistribution, error)
	RunMonthlyCycle(ctx context.Context, period time.Time) error
	SweepExpired(ctx context.Context) (int, error)
	GetDistribution(ctx context.Context, tenantID, id string) (*domain.PendingDistribution, error)
	ListDistributions(ctx context.Context, tenantID string, status domain.DistributionStatus, includeExpired bool) ([]*domain.PendingDistribution, error)
}

type DefaultDistributionUsecase struct {
	distRepo   domain.DistributionRepository
	tenantRepo domain.TenantRepository
	memberRepo domain.MemberRepository
	tierRepo   domain.TierRepository

	ledgerUsecase ledger.LedgerUsecase

	kafkaPublisher *publisher.KafkaPublisher
	metrics        *metrics.LoyaltyMetrics

	pendingExpiration time.Duration
}

func NewDefaultDistributionUsecase(
	distRepo domain.DistributionRepository,
	tenantRepo domain.TenantRepository,
	memberRepo domain.MemberRepository,
	tierRepo domain.TierRepository,
	ledgerUsecase ledger.LedgerUsecase,
	kafkaPublisher *publisher.KafkaPublisher,
	loyaltyMetrics *metrics.LoyaltyMetrics,
	pendingExpirationDays int,
) *DefaultDistributionUsecase {
	if pendingExpirationDays <= 0 {
		pendingExpirationDays = 7
	}
	return &DefaultDistributionUsecase{
		distRepo:          distRepo,
		tenantRepo:        tenantRepo,
		memberRepo:        memberRepo,
		tierRepo:          tierRepo,
		ledgerUsecase:     ledgerUsecase,
		kafkaPublisher:    kafkaPublisher,
		metrics:           loyaltyMetrics,
		pendingExpiration: time.Duration(pendingExpirationDays) * 24 * time.Hour,
	}
}

func (uc *DefaultDistributionUsecase) notifyDistribution(d *domain.PendingDistribution) {
	if uc.kafkaPublisher == nil || d == nil {
		return
	}
	event := publisher.DistributionEvent{
		DistributionID: d.ID,
		TenantID:       d.TenantID,
		ReferenceKey:   d.ReferenceKey,
		Status:         string(d.Status),
		ExpiresAt:      d.ExpiresAt,
	}
	if d.Preview != nil {
		event.TotalMembers = d.Preview.TotalMembers
		event.TotalAmount = d.Preview.TotalAmount.StringFixed(2)
	}
	go func(event publisher.DistributionEvent) {
		if err := uc.kafkaPublisher.PublishDistribution(event); err != nil {
			slog.Error("failed to publish distribution event",
				"distribution_id", event.DistributionID, "error", err.Error())
		}
	}(event)
}
