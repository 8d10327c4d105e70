package tier

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/tradeup-app/loyalty-service/internal/domain"
)

func strPtr(s string) *string { return &s }

func activePromo(stackable, upgradeOnly bool) *domain.TierPromotion {
	return &domain.TierPromotion{
		ID:          "promo-1",
		Code:        "SUMMER",
		StartsAt:    time.Now().Add(-time.Hour),
		EndsAt:      time.Now().Add(time.Hour),
		Stackable:   stackable,
		UpgradeOnly: upgradeOnly,
		IsActive:    true,
	}
}

func TestResolve(t *testing.T) {
	ranking := DefaultRanking()

	tests := []struct {
		name      string
		cur       Current
		proposal  Proposal
		wantApply bool
	}{
		{
			name:      "no current tier accepts any assignment",
			cur:       Current{},
			proposal:  Proposal{Source: domain.SourcePurchase, TierID: strPtr("gold"), BonusRate: decimal.NewFromFloat(0.05)},
			wantApply: true,
		},
		{
			name:      "removal with no tier is a no-op",
			cur:       Current{},
			proposal:  Proposal{Source: domain.SourceRefund},
			wantApply: false,
		},
		{
			name: "staff outranks subscription",
			cur: Current{
				TierID:    strPtr("platinum"),
				BonusRate: decimal.NewFromFloat(0.10),
				Source:    domain.SourceSubscriptionStarted,
			},
			proposal:  Proposal{Source: domain.SourceStaff, TierID: strPtr("silver"), BonusRate: decimal.NewFromFloat(0.02)},
			wantApply: true,
		},
		{
			name: "purchase loses to subscription",
			cur: Current{
				TierID:    strPtr("platinum"),
				BonusRate: decimal.NewFromFloat(0.10),
				Source:    domain.SourceSubscriptionStarted,
			},
			proposal:  Proposal{Source: domain.SourcePurchase, TierID: strPtr("gold"), BonusRate: decimal.NewFromFloat(0.05)},
			wantApply: false,
		},
		{
			name: "same source replaces itself",
			cur: Current{
				TierID:    strPtr("silver"),
				BonusRate: decimal.NewFromFloat(0.02),
				Source:    domain.SourcePurchase,
			},
			proposal:  Proposal{Source: domain.SourcePurchase, TierID: strPtr("gold"), BonusRate: decimal.NewFromFloat(0.05)},
			wantApply: true,
		},
		{
			name: "higher-value upgrade-only promo beats subscription",
			cur: Current{
				TierID:    strPtr("silver"),
				BonusRate: decimal.NewFromFloat(0.02),
				Source:    domain.SourceSubscriptionStarted,
			},
			proposal: Proposal{
				Source:    domain.SourcePromo,
				TierID:    strPtr("platinum"),
				BonusRate: decimal.NewFromFloat(0.10),
				Promo:     activePromo(false, true),
			},
			wantApply: true,
		},
		{
			name: "lower-value promo loses to subscription",
			cur: Current{
				TierID:    strPtr("platinum"),
				BonusRate: decimal.NewFromFloat(0.10),
				Source:    domain.SourceSubscriptionStarted,
			},
			proposal: Proposal{
				Source:    domain.SourcePromo,
				TierID:    strPtr("silver"),
				BonusRate: decimal.NewFromFloat(0.02),
				Promo:     activePromo(true, false),
			},
			wantApply: false,
		},
		{
			name: "non-stackable promo skipped while promo tier held",
			cur: Current{
				TierID:         strPtr("gold"),
				BonusRate:      decimal.NewFromFloat(0.05),
				Source:         domain.SourcePromo,
				HasActivePromo: true,
			},
			proposal: Proposal{
				Source:    domain.SourcePromo,
				TierID:    strPtr("platinum"),
				BonusRate: decimal.NewFromFloat(0.10),
				Promo:     activePromo(false, false),
			},
			wantApply: false,
		},
		{
			name: "upgrade-only promo refuses a downgrade",
			cur: Current{
				TierID:    strPtr("platinum"),
				BonusRate: decimal.NewFromFloat(0.10),
				Source:    domain.SourcePurchase,
			},
			proposal: Proposal{
				Source:    domain.SourcePromo,
				TierID:    strPtr("silver"),
				BonusRate: decimal.NewFromFloat(0.02),
				Promo:     activePromo(true, true),
			},
			wantApply: false,
		},
		{
			name: "refund competes with purchase rank",
			cur: Current{
				TierID:    strPtr("gold"),
				BonusRate: decimal.NewFromFloat(0.05),
				Source:    domain.SourcePurchase,
			},
			proposal:  Proposal{Source: domain.SourceRefund},
			wantApply: true,
		},
		{
			name: "refund does not undo a staff override",
			cur: Current{
				TierID:    strPtr("gold"),
				BonusRate: decimal.NewFromFloat(0.05),
				Source:    domain.SourceStaff,
			},
			proposal:  Proposal{Source: domain.SourceRefund},
			wantApply: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := ranking.Resolve(tt.cur, tt.proposal)
			assert.Equal(t, tt.wantApply, verdict.Apply, "reason: %s", verdict.Reason)
			if !tt.wantApply {
				assert.NotEmpty(t, verdict.Reason)
			}
		})
	}
}

func TestHighestBonusTier(t *testing.T) {
	gold := &domain.Tier{ID: "gold", BonusRate: decimal.NewFromFloat(0.05)}
	silver := &domain.Tier{ID: "silver", BonusRate: decimal.NewFromFloat(0.02)}
	platinum := &domain.Tier{ID: "platinum", BonusRate: decimal.NewFromFloat(0.10)}

	assert.Nil(t, HighestBonusTier(nil))
	assert.Equal(t, gold, HighestBonusTier([]*domain.Tier{gold}))
	assert.Equal(t, platinum, HighestBonusTier([]*domain.Tier{silver, platinum, gold}))
}
