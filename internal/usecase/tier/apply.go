package tier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeup-app/loyalty-service/internal/domain"
)

type ApplyChangeInput struct {
	TenantID string
	MemberID string
	Source   domain.ChangeSource

	// ProposedTierID is nil for removals. Revert sources (refund,
	// subscription_cancelled) ignore it and restore the tier recorded in the
	// original log row located by SourceReference.
	ProposedTierID *string

	SourceReference string
	Reason          string
	OrderTotal      decimal.Decimal

	// ExpiresAt bounds the assignment, e.g. the grace deadline after a
	// failed subscription billing attempt.
	ExpiresAt *time.Time
	Actor     string
}

var knownSources = map[domain.ChangeSource]bool{
	domain.SourcePurchase:                  true,
	domain.SourceSubscriptionStarted:       true,
	domain.SourceSubscriptionCancelled:     true,
	domain.SourceSubscriptionBillingFailed: true,
	domain.SourceStaff:                     true,
	domain.SourcePromo:                     true,
	domain.SourceEligibility:               true,
	domain.SourceRefund:                    true,
}

// ApplyChange routes one tier change request through priority resolution and
// commits the accepted outcome atomically. A superseded request returns
// (nil, nil): logged, counted, not an error.
func (uc *DefaultTierUsecase) ApplyChange(ctx context.Context, input *ApplyChangeInput) (*domain.TierChangeLog, error) {
	if input.TenantID == "" || input.MemberID == "" {
		return nil, fmt.Errorf("%w: tenant and member are required", domain.ErrValidation)
	}
	if !knownSources[input.Source] {
		return nil, fmt.Errorf("%w: unknown change source %q", domain.ErrValidation, input.Source)
	}

	proposedTierID := input.ProposedTierID
	if input.Source == domain.SourceSubscriptionBillingFailed && proposedTierID == nil {
		// Billing failure keeps the tier and only sets the grace deadline.
		member, err := uc.memberRepo.GetMemberByID(input.TenantID, input.MemberID)
		if err != nil {
			return nil, err
		}
		if member.TierID == nil {
			return nil, nil
		}
		proposedTierID = member.TierID
	}
	if input.Source == domain.SourceRefund || input.Source == domain.SourceSubscriptionCancelled {
		original, err := uc.logRepo.FindLogEntryByReference(input.TenantID, input.MemberID, input.SourceReference)
		if err != nil {
			return nil, fmt.Errorf("locating original change for %q: %w", input.SourceReference, err)
		}
		proposedTierID = original.PreviousTierID
	}

	var proposedTier *domain.Tier
	if proposedTierID != nil {
		t, err := uc.tierRepo.GetTierByID(input.TenantID, *proposedTierID)
		if err != nil {
			return nil, err
		}
		if !t.IsActive {
			return nil, fmt.Errorf("%w: tier %s is inactive", domain.ErrNotFound, t.ID)
		}
		proposedTier = t
	}

	applied, err := uc.logRepo.ApplyTierChange(input.TenantID, input.MemberID, func(state *domain.TierChangeState) (*domain.TierChangeDecision, error) {
		if input.Source == domain.SourceRefund || input.Source == domain.SourceSubscriptionCancelled {
			// A redelivered revert must not undo itself. The member row lock
			// serializes competing deliveries, so an existing revert row for
			// this reference means the work is already done.
			if _, err := uc.logRepo.FindRevertByReference(input.TenantID, input.MemberID, input.SourceReference); err == nil {
				slog.Info("tier revert already applied",
					"tenant_id", input.TenantID,
					"member_id", input.MemberID,
					"source_reference", input.SourceReference)
				uc.metrics.RecordTierChangeSkipped(string(input.Source))
				return nil, nil
			} else if !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
		}

		cur := uc.currentState(state)

		proposal := Proposal{Source: input.Source, TierID: proposedTierID}
		if proposedTier != nil {
			proposal.BonusRate = proposedTier.BonusRate
		}
		if verdict := uc.ranking.Resolve(cur, proposal); !verdict.Apply {
			slog.Info("tier change skipped",
				"tenant_id", input.TenantID,
				"member_id", input.MemberID,
				"source", string(input.Source),
				"reason", verdict.Reason)
			uc.metrics.RecordTierChangeSkipped(string(input.Source))
			return nil, nil
		}

		return uc.buildDecision(state, cur, input, proposedTier, proposedTierID), nil
	})
	if err != nil {
		return nil, err
	}
	if applied == nil {
		return nil, nil
	}

	uc.metrics.RecordTierChange(string(applied.ChangeType), string(applied.SourceType))
	uc.notifyChange(applied)
	return applied, nil
}

func (uc *DefaultTierUsecase) buildDecision(
	state *domain.TierChangeState,
	cur Current,
	input *ApplyChangeInput,
	proposedTier *domain.Tier,
	proposedTierID *string,
) *domain.TierChangeDecision {
	member := state.Member

	newTierName := ""
	newBonus := decimal.Zero
	if proposedTier != nil {
		newTierName = proposedTier.Name
		newBonus = proposedTier.BonusRate
	}

	var changeType domain.ChangeType
	switch {
	case input.Source == domain.SourceRefund || input.Source == domain.SourceSubscriptionCancelled:
		changeType = domain.ChangeReverted
	case proposedTierID == nil:
		changeType = domain.ChangeRemoved
	case member.TierID == nil:
		changeType = domain.ChangeAssigned
	case newBonus.GreaterThan(cur.BonusRate):
		changeType = domain.ChangeUpgraded
	case newBonus.LessThan(cur.BonusRate):
		changeType = domain.ChangeDowngraded
	default:
		changeType = domain.ChangeAssigned
	}

	decision := &domain.TierChangeDecision{
		Log: &domain.TierChangeLog{
			ID:               uuid.NewString(),
			TenantID:         input.TenantID,
			MemberID:         input.MemberID,
			PreviousTierID:   member.TierID,
			NewTierID:        proposedTierID,
			PreviousTierName: member.TierName,
			NewTierName:      newTierName,
			ChangeType:       changeType,
			SourceType:       input.Source,
			SourceReference:  input.SourceReference,
			Reason:           input.Reason,
			OrderTotal:       input.OrderTotal,
			ExpiresAt:        input.ExpiresAt,
			CreatedAt:        time.Now().UTC(),
			CreatedBy:        input.Actor,
		},
		NewTierID:     proposedTierID,
		NewTierName:   newTierName,
		TierExpiresAt: input.ExpiresAt,
	}

	// A non-promo change taking over from an active promo tier closes the
	// usage so the expiration sweep does not revert it later.
	if len(state.ActiveUsages) > 0 && input.Source != domain.SourcePromo {
		usage := state.ActiveUsages[0]
		decision.UpdateUsageID = usage.ID
		if changeType == domain.ChangeUpgraded {
			decision.UpdateUsageStatus = domain.UsageUpgraded
		} else {
			decision.UpdateUsageStatus = domain.UsageReverted
		}
	}

	return decision
}
