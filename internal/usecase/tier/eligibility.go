package tier

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tradeup-app/loyalty-service/internal/domain"
)

// ActivitySnapshot carries the member activity metrics eligibility rules
// evaluate against. The caller supplies it already scoped to each rule's
// time window; this core never queries the commerce platform itself.
type ActivitySnapshot struct {
	TotalSpend   decimal.Decimal
	TradeInValue decimal.Decimal
	TradeInCount int
	OrderCount   int
}

func (s ActivitySnapshot) MetricValue(metric domain.RuleMetric) decimal.Decimal {
	switch metric {
	case domain.MetricTotalSpend:
		return s.TotalSpend
	case domain.MetricTradeInValue:
		return s.TradeInValue
	case domain.MetricTradeInCount:
		return decimal.NewFromInt(int64(s.TradeInCount))
	case domain.MetricOrderCount:
		return decimal.NewFromInt(int64(s.OrderCount))
	}
	return decimal.Zero
}

type EvaluateEligibilityInput struct {
	TenantID string
	MemberID string
	Activity ActivitySnapshot
	Actor    string
}

// EvaluateEligibility picks the highest-priority satisfied rule and routes
// its tier through the regular change pipeline, so eligibility results still
// lose to higher-ranked overrides. No satisfied rule means no change.
func (uc *DefaultTierUsecase) EvaluateEligibility(ctx context.Context, input *EvaluateEligibilityInput) (*domain.TierChangeLog, error) {
	if input.TenantID == "" || input.MemberID == "" {
		return nil, fmt.Errorf("%w: tenant and member are required", domain.ErrValidation)
	}

	rules, err := uc.ruleRepo.GetActiveRules(input.TenantID)
	if err != nil {
		return nil, err
	}

	for _, rule := range rules {
		if !rule.Satisfied(input.Activity.MetricValue(rule.Metric)) {
			continue
		}
		return uc.ApplyChange(ctx, &ApplyChangeInput{
			TenantID:        input.TenantID,
			MemberID:        input.MemberID,
			Source:          domain.SourceEligibility,
			ProposedTierID:  &rule.TierID,
			SourceReference: "rule:" + rule.ID,
			Reason:          rule.Name,
			Actor:           input.Actor,
		})
	}
	return nil, nil
}
