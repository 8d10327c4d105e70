package tier

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tradeup-app/loyalty-service/internal/domain"
)

type SweepReport struct {
	PromoReverts    int
	TierExpirations int
}

// SweepExpired resolves time-based transitions for one tenant: promo usages
// past their expiry first, then members whose tier deadline passed. Every
// step rereads state under the member lock before writing, so a second sweep
// over the same rows is a no-op and concurrent workers are harmless.
func (uc *DefaultTierUsecase) SweepExpired(ctx context.Context, tenantID string) (*SweepReport, error) {
	started := time.Now()
	report := &SweepReport{}
	now := started.UTC()

	usages, err := uc.promoRepo.FindExpiredActiveUsages(tenantID, now)
	if err != nil {
		return nil, err
	}
	for _, usage := range usages {
		reverted, err := uc.expirePromoUsage(tenantID, usage, now)
		if err != nil {
			slog.Error("failed to expire promo usage",
				"tenant_id", tenantID, "usage_id", usage.ID, "error", err.Error())
			continue
		}
		if reverted {
			report.PromoReverts++
		}
	}

	members, err := uc.memberRepo.FindMembersWithExpiredTier(tenantID, now)
	if err != nil {
		return nil, err
	}
	for _, member := range members {
		expired, err := uc.expireMemberTier(tenantID, member.ID, now)
		if err != nil {
			slog.Error("failed to expire member tier",
				"tenant_id", tenantID, "member_id", member.ID, "error", err.Error())
			continue
		}
		if expired {
			report.TierExpirations++
		}
	}

	uc.metrics.RecordSweep("tier_expiration", started)
	return report, nil
}

func (uc *DefaultTierUsecase) expirePromoUsage(tenantID string, usage *domain.MemberPromoUsage, now time.Time) (bool, error) {
	promo, err := uc.promoRepo.GetPromotionByID(tenantID, usage.PromotionID)
	if err != nil {
		return false, err
	}

	var revertTier *domain.Tier
	if promo.RevertOnExpire && usage.PreviousTierID != nil {
		t, err := uc.tierRepo.GetTierByID(tenantID, *usage.PreviousTierID)
		if err == nil {
			revertTier = t
		}
	}

	applied, err := uc.logRepo.ApplyTierChange(tenantID, usage.MemberID, func(state *domain.TierChangeState) (*domain.TierChangeDecision, error) {
		var locked *domain.MemberPromoUsage
		for _, u := range state.ActiveUsages {
			if u.ID == usage.ID {
				locked = u
				break
			}
		}
		if locked == nil {
			// Already flipped by another worker or a superseding change.
			return nil, nil
		}

		member := state.Member
		holdsPromoTier := member.TierID != nil && *member.TierID == promo.TierID

		usageStatus := domain.UsageExpired
		if promo.RevertOnExpire {
			usageStatus = domain.UsageReverted
		}

		if !holdsPromoTier {
			// The tier moved on; only the bookkeeping row needs closing.
			return &domain.TierChangeDecision{
				UpdateUsageID:     locked.ID,
				UpdateUsageStatus: domain.UsageExpired,
			}, nil
		}

		var newTierID *string
		newTierName := ""
		changeType := domain.ChangeExpired
		if promo.RevertOnExpire && revertTier != nil {
			newTierID = &revertTier.ID
			newTierName = revertTier.Name
			changeType = domain.ChangeReverted
		}

		return &domain.TierChangeDecision{
			Log: &domain.TierChangeLog{
				ID:               uuid.NewString(),
				TenantID:         tenantID,
				MemberID:         member.ID,
				PreviousTierID:   member.TierID,
				NewTierID:        newTierID,
				PreviousTierName: member.TierName,
				NewTierName:      newTierName,
				ChangeType:       changeType,
				SourceType:       domain.SourcePromo,
				SourceReference:  "promo:" + promo.Code,
				Reason:           "promotion period ended",
				CreatedAt:        now,
			},
			NewTierID:         newTierID,
			NewTierName:       newTierName,
			UpdateUsageID:     locked.ID,
			UpdateUsageStatus: usageStatus,
		}, nil
	})
	if err != nil {
		return false, err
	}
	if applied != nil {
		uc.metrics.RecordTierChange(string(applied.ChangeType), string(applied.SourceType))
		uc.notifyChange(applied)
	}
	return applied != nil, nil
}

func (uc *DefaultTierUsecase) expireMemberTier(tenantID, memberID string, now time.Time) (bool, error) {
	applied, err := uc.logRepo.ApplyTierChange(tenantID, memberID, func(state *domain.TierChangeState) (*domain.TierChangeDecision, error) {
		member := state.Member
		if member.TierID == nil || member.TierExpiresAt == nil || member.TierExpiresAt.After(now) {
			return nil, nil
		}

		source := domain.SourceStaff
		if state.LatestLog != nil {
			source = state.LatestLog.SourceType
		}

		decision := &domain.TierChangeDecision{
			Log: &domain.TierChangeLog{
				ID:               uuid.NewString(),
				TenantID:         tenantID,
				MemberID:         member.ID,
				PreviousTierID:   member.TierID,
				PreviousTierName: member.TierName,
				ChangeType:       domain.ChangeExpired,
				SourceType:       source,
				Reason:           "tier expired",
				CreatedAt:        now,
			},
		}
		if len(state.ActiveUsages) > 0 {
			decision.UpdateUsageID = state.ActiveUsages[0].ID
			decision.UpdateUsageStatus = domain.UsageExpired
		}
		return decision, nil
	})
	if err != nil {
		return false, err
	}
	if applied != nil {
		uc.metrics.RecordTierChange(string(applied.ChangeType), string(applied.SourceType))
		uc.notifyChange(applied)
	}
	return applied != nil, nil
}
