package tier

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tradeup-app/loyalty-service/internal/domain"
)

// Ranking is the priority table for tier change sources. Higher rank wins;
// sources missing from the table rank zero. Revert sources inherit the rank
// of the event they undo, so a refund competes as a purchase would.
type Ranking map[domain.ChangeSource]int

// DefaultRanking places staff above everything and an active subscription
// above promotional and eligibility tiers, which in turn outrank plain
// purchases. The subscription/promo relation is deliberately part of the
// table rather than hardcoded branching.
func DefaultRanking() Ranking {
	return Ranking{
		domain.SourceStaff:               100,
		domain.SourceSubscriptionStarted: 60,
		domain.SourcePromo:               40,
		domain.SourceEligibility:         30,
		domain.SourcePurchase:            20,
	}
}

func (r Ranking) rank(source domain.ChangeSource) int {
	switch source {
	case domain.SourceRefund:
		return r[domain.SourcePurchase]
	case domain.SourceSubscriptionCancelled, domain.SourceSubscriptionBillingFailed:
		return r[domain.SourceSubscriptionStarted]
	}
	return r[source]
}

// Current is the member's tier state at decision time, read under the row
// lock.
type Current struct {
	TierID         *string
	BonusRate      decimal.Decimal
	Source         domain.ChangeSource
	HasActivePromo bool
}

// Proposal is one requested tier change. A nil TierID proposes removal.
// Promo carries the promotion when the source is a redemption.
type Proposal struct {
	Source    domain.ChangeSource
	TierID    *string
	BonusRate decimal.Decimal
	Promo     *domain.TierPromotion
}

type Verdict struct {
	Apply  bool
	Reason string
}

func apply() Verdict { return Verdict{Apply: true} }

func skip(format string, args ...any) Verdict {
	return Verdict{Reason: fmt.Sprintf(format, args...)}
}

// Resolve is the pure conflict resolver: given the held state and a proposed
// change, it decides whether the change applies or is superseded. It never
// touches storage, so the full ranking behavior is table-testable.
func (r Ranking) Resolve(cur Current, p Proposal) Verdict {
	if p.Source == domain.SourceStaff {
		return apply()
	}

	if p.Promo != nil {
		if !p.Promo.Stackable && cur.HasActivePromo {
			return skip("promotion %s is not stackable and an active promo tier is held", p.Promo.Code)
		}
		if p.Promo.UpgradeOnly && cur.TierID != nil && !p.BonusRate.GreaterThan(cur.BonusRate) {
			return skip("promotion %s is upgrade-only and does not beat the current tier", p.Promo.Code)
		}
	}

	if cur.TierID == nil {
		if p.TierID == nil {
			return skip("no tier to remove")
		}
		return apply()
	}

	if p.Source == cur.Source {
		return apply()
	}

	proposedRank, heldRank := r.rank(p.Source), r.rank(cur.Source)
	if proposedRank >= heldRank {
		return apply()
	}

	// Lower-ranked promos still win when they are strictly more valuable and
	// their flags allow taking over.
	if p.Promo != nil && p.BonusRate.GreaterThan(cur.BonusRate) &&
		(p.Promo.UpgradeOnly || p.Promo.Stackable) {
		return apply()
	}

	return skip("superseded by active %s tier", cur.Source)
}

// HighestBonusTier picks the winner when one purchase carries several
// membership products.
func HighestBonusTier(tiers []*domain.Tier) *domain.Tier {
	var best *domain.Tier
	for _, t := range tiers {
		if best == nil || t.BonusRate.GreaterThan(best.BonusRate) {
			best = t
		}
	}
	return best
}
