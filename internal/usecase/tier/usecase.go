package tier

import (
	"context"
	"log/slog"

	"github.com/tradeup-app/loyalty-service/internal/domain"
	publisher "github.com/tradeup-app/loyalty-service/internal/infrastructure/kafka"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/metrics"
)

type TierUsecase interface {
	ApplyChange(ctx context.Context, input *ApplyChangeInput) (*domain.TierChangeLog, error)
	ApplyPromotion(ctx context.Context, input *ApplyPromotionInput) (*domain.TierChangeLog, error)
	EvaluateEligibility(ctx context.Context, input *EvaluateEligibilityInput) (*domain.TierChangeLog, error)
	SweepExpired(ctx context.Context, tenantID string) (*SweepReport, error)
	GetMemberHistory(ctx context.Context, tenantID, memberID string, limit int) ([]*domain.TierChangeLog, error)
}

type DefaultTierUsecase struct {
	logRepo    domain.TierLogRepository
	tierRepo   domain.TierRepository
	memberRepo domain.MemberRepository
	promoRepo  domain.PromotionRepository
	ruleRepo   domain.EligibilityRuleRepository

	kafkaPublisher *publisher.KafkaPublisher
	metrics        *metrics.LoyaltyMetrics
	ranking        Ranking
}

func NewDefaultTierUsecase(
	logRepo domain.TierLogRepository,
	tierRepo domain.TierRepository,
	memberRepo domain.MemberRepository,
	promoRepo domain.PromotionRepository,
	ruleRepo domain.EligibilityRuleRepository,
	kafkaPublisher *publisher.KafkaPublisher,
	loyaltyMetrics *metrics.LoyaltyMetrics,
	ranking Ranking,
) *DefaultTierUsecase {
	if ranking == nil {
		ranking = DefaultRanking()
	}
	return &DefaultTierUsecase{
		logRepo:        logRepo,
		tierRepo:       tierRepo,
		memberRepo:     memberRepo,
		promoRepo:      promoRepo,
		ruleRepo:       ruleRepo,
		kafkaPublisher: kafkaPublisher,
		metrics:        loyaltyMetrics,
		ranking:        ranking,
	}
}

// notifyChange emits the tier change event without ever blocking or failing
// the committed change.
func (uc *DefaultTierUsecase) notifyChange(log *domain.TierChangeLog) {
	if uc.kafkaPublisher == nil || log == nil {
		return
	}
	go func(event publisher.TierChangeEvent) {
		if err := uc.kafkaPublisher.PublishTierChange(event); err != nil {
			slog.Error("failed to publish tier change event", "log_id", event.LogID, "error", err.Error())
		}
	}(publisher.TierChangeEvent{
		LogID:        log.ID,
		TenantID:     log.TenantID,
		MemberID:     log.MemberID,
		PreviousTier: log.PreviousTierName,
		NewTier:      log.NewTierName,
		ChangeType:   string(log.ChangeType),
		SourceType:   string(log.SourceType),
		Reference:    log.SourceReference,
	})
}

// currentState builds the resolver input from the locked member state. The
// held source comes from the latest log row; a member whose tier predates
// any history competes as a staff assignment.
func (uc *DefaultTierUsecase) currentState(state *domain.TierChangeState) Current {
	cur := Current{
		TierID:         state.Member.TierID,
		HasActivePromo: len(state.ActiveUsages) > 0,
	}
	if state.Member.TierID == nil {
		return cur
	}
	cur.Source = domain.SourceStaff
	if state.LatestLog != nil {
		cur.Source = state.LatestLog.SourceType
	}
	if heldTier, err := uc.tierRepo.GetTierByID(state.Member.TenantID, *state.Member.TierID); err == nil {
		cur.BonusRate = heldTier.BonusRate
	}
	return cur
}
