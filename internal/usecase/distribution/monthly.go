package distribution

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tradeup-app/loyalty-service/internal/domain"
)

// RunMonthlyCycle creates this period's distribution for every tenant and
// auto-approves where the tenant's settings and the bootstrap rule allow it.
// Per-tenant failures are logged and skipped; the scheduler may invoke this
// more than once per period, the reference key conflict keeps that harmless.
func (uc *DefaultDistributionUsecase) RunMonthlyCycle(ctx context.Context, period time.Time) error {
	tenants, err := uc.tenantRepo.GetTenants()
	if err != nil {
		return err
	}

	for _, tenant := range tenants {
		d, err := uc.CreateMonthlyCredit(ctx, tenant.ID, period)
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				continue
			}
			slog.Error("monthly distribution create failed", "tenant_id", tenant.ID, "error", err.Error())
			continue
		}
		if d == nil {
			continue
		}

		allowed, err := uc.autoApproveAllowed(d)
		if err != nil || !allowed {
			continue
		}
		if _, err := uc.Approve(ctx, &ApproveInput{
			TenantID: tenant.ID,
			ID:       d.ID,
			Approver: "scheduler",
			Auto:     true,
		}); err != nil {
			slog.Error("auto-approval failed", "tenant_id", tenant.ID, "distribution_id", d.ID, "error", err.Error())
		}
	}
	return nil
}
