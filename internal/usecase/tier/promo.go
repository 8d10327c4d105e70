package tier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tradeup-app/loyalty-service/internal/domain"
)

type ApplyPromotionInput struct {
	TenantID string
	MemberID string
	Code     string
	Actor    string
}

// ApplyPromotion redeems a promotion code for a member. Limit violations
// (inactive window, exhausted uses, repeat redemption) are no-ops returning
// (nil, nil), matching how superseded tier changes behave. The unique
// (member, promotion) usage row is what holds under concurrent redemption:
// the loser of the race hits the index and also lands on the no-op path.
func (uc *DefaultTierUsecase) ApplyPromotion(ctx context.Context, input *ApplyPromotionInput) (*domain.TierChangeLog, error) {
	if input.TenantID == "" || input.MemberID == "" || input.Code == "" {
		return nil, fmt.Errorf("%w: tenant, member and code are required", domain.ErrValidation)
	}

	promo, err := uc.promoRepo.GetPromotionByCode(input.TenantID, input.Code)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if !promo.IsCurrentlyActive(now) {
		slog.Info("promotion not redeemable", "tenant_id", input.TenantID, "code", promo.Code)
		return nil, nil
	}

	if _, err := uc.promoRepo.GetUsage(input.TenantID, input.MemberID, promo.ID); err == nil {
		return nil, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	grantedTier, err := uc.tierRepo.GetTierByID(input.TenantID, promo.TierID)
	if err != nil {
		return nil, err
	}
	if !grantedTier.IsActive {
		return nil, fmt.Errorf("%w: tier %s is inactive", domain.ErrNotFound, grantedTier.ID)
	}

	expiresAt := promo.EndsAt
	if promo.GrantDurationDays > 0 {
		expiresAt = now.AddDate(0, 0, promo.GrantDurationDays)
	}

	applied, err := uc.logRepo.ApplyTierChange(input.TenantID, input.MemberID, func(state *domain.TierChangeState) (*domain.TierChangeDecision, error) {
		cur := uc.currentState(state)

		proposal := Proposal{
			Source:    domain.SourcePromo,
			TierID:    &promo.TierID,
			BonusRate: grantedTier.BonusRate,
			Promo:     promo,
		}
		if verdict := uc.ranking.Resolve(cur, proposal); !verdict.Apply {
			slog.Info("promotion skipped",
				"tenant_id", input.TenantID,
				"member_id", input.MemberID,
				"code", promo.Code,
				"reason", verdict.Reason)
			uc.metrics.RecordTierChangeSkipped(string(domain.SourcePromo))
			return nil, nil
		}

		member := state.Member
		changeType := domain.ChangeAssigned
		if member.TierID != nil {
			changeType = domain.ChangeUpgraded
			if grantedTier.BonusRate.LessThan(cur.BonusRate) {
				changeType = domain.ChangeDowngraded
			}
		}

		return &domain.TierChangeDecision{
			Log: &domain.TierChangeLog{
				ID:               uuid.NewString(),
				TenantID:         input.TenantID,
				MemberID:         input.MemberID,
				PreviousTierID:   member.TierID,
				NewTierID:        &promo.TierID,
				PreviousTierName: member.TierName,
				NewTierName:      grantedTier.Name,
				ChangeType:       changeType,
				SourceType:       domain.SourcePromo,
				SourceReference:  "promo:" + promo.Code,
				Reason:           promo.Name,
				ExpiresAt:        &expiresAt,
				CreatedAt:        now,
				CreatedBy:        input.Actor,
			},
			NewTierID:     &promo.TierID,
			NewTierName:   grantedTier.Name,
			TierExpiresAt: &expiresAt,
			InsertUsage: &domain.MemberPromoUsage{
				ID:             uuid.NewString(),
				TenantID:       input.TenantID,
				MemberID:       input.MemberID,
				PromotionID:    promo.ID,
				AppliedAt:      now,
				PreviousTierID: member.TierID,
				ExpiresAt:      &expiresAt,
				Status:         domain.UsageActive,
			},
			IncrementPromoID: promo.ID,
		}, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Lost a concurrent redemption race; the winner's row stands.
			return nil, nil
		}
		return nil, err
	}
	if applied == nil {
		return nil, nil
	}

	uc.metrics.RecordTierChange(string(applied.ChangeType), string(applied.SourceType))
	uc.notifyChange(applied)
	return applied, nil
}
