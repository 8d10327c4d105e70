package distribution

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jaevor/go-nanoid"
	"github.com/shopspring/decimal"
	"github.com/tradeup-app/loyalty-service/internal/domain"
)

// buildPlan computes who gets how much. It runs both at creation (for the
// snapshotted preview) and inside Approve (for execution), so what the
// merchant saw is exactly the calculation that runs.
func (uc *DefaultDistributionUsecase) buildPlan(tenantID string, now time.Time) (*domain.DistributionPreview, error) {
	tiers, err := uc.tierRepo.GetActiveTiers(tenantID)
	if err != nil {
		return nil, err
	}
	tierByID := make(map[string]*domain.Tier, len(tiers))
	for _, t := range tiers {
		tierByID[t.ID] = t
	}

	members, err := uc.memberRepo.GetActiveMembersWithTier(tenantID)
	if err != nil {
		return nil, err
	}

	preview := &domain.DistributionPreview{
		TotalAmount:  decimal.Zero,
		CalculatedAt: now,
	}
	byTier := make(map[string]*domain.TierBreakdown)

	for _, member := range members {
		if member.TierID == nil {
			preview.Skipped++
			continue
		}
		t, ok := tierByID[*member.TierID]
		if !ok || !t.MonthlyCredit.IsPositive() {
			preview.Skipped++
			continue
		}

		preview.TotalMembers++
		preview.TotalAmount = preview.TotalAmount.Add(t.MonthlyCredit)
		preview.Members = append(preview.Members, domain.PlannedCredit{
			MemberID: member.ID,
			Tier:     t.Name,
			Amount:   t.MonthlyCredit,
		})

		b, ok := byTier[t.ID]
		if !ok {
			b = &domain.TierBreakdown{Tier: t.Name, Amount: decimal.Zero}
			byTier[t.ID] = b
		}
		b.Count++
		b.Amount = b.Amount.Add(t.MonthlyCredit)
	}

	for _, t := range tiers {
		if b, ok := byTier[t.ID]; ok {
			preview.ByTier = append(preview.ByTier, *b)
		}
	}
	return preview, nil
}

// ReferenceKey names the monthly period a distribution covers, one per
// tenant per month.
func ReferenceKey(period time.Time) string {
	return "monthly-" + period.UTC().Format("2006-01")
}

// CreateMonthlyCredit proposes this period's bulk credit run for approval. A
// pending or approved run for the same period makes it an ErrConflict; a
// period with no eligible members creates nothing and returns (nil, nil).
func (uc *DefaultDistributionUsecase) CreateMonthlyCredit(ctx context.Context, tenantID string, period time.Time) (*domain.PendingDistribution, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant is required", domain.ErrValidation)
	}
	if _, err := uc.tenantRepo.GetTenantByID(tenantID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	preview, err := uc.buildPlan(tenantID, now)
	if err != nil {
		return nil, err
	}
	if preview.TotalMembers == 0 {
		slog.Info("no members eligible for monthly credit", "tenant_id", tenantID)
		return nil, nil
	}

	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, err
	}

	d := &domain.PendingDistribution{
		ID:           idGenerator(),
		TenantID:     tenantID,
		Type:         domain.DistributionMonthlyCredit,
		ReferenceKey: ReferenceKey(period),
		Status:       domain.DistributionPending,
		Preview:      preview,
		ExpiresAt:    now.Add(uc.pendingExpiration),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.distRepo.CreateDistribution(d); err != nil {
		return nil, err
	}

	uc.metrics.RecordDistribution(string(domain.DistributionPending))
	uc.notifyDistribution(d)
	return d, nil
}
