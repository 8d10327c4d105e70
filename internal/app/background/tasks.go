package background

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tradeup-app/loyalty-service/internal/config"
	"github.com/tradeup-app/loyalty-service/internal/domain"
	"github.com/tradeup-app/loyalty-service/internal/usecase/distribution"
	"github.com/tradeup-app/loyalty-service/internal/usecase/ledger"
	"github.com/tradeup-app/loyalty-service/internal/usecase/tier"
)

// BackgroundTasks schedules the sweeps. Every job is idempotent, so a second
// worker process running the same schedule only wastes queries.
type BackgroundTasks struct {
	TierUsecase         tier.TierUsecase
	LedgerUsecase       ledger.LedgerUsecase
	DistributionUsecase distribution.DistributionUsecase
	TenantRepo          domain.TenantRepository

	cfg  config.Sweeps
	cron *cron.Cron
}

func NewBackgroundTasks(
	tierUC tier.TierUsecase,
	ledgerUC ledger.LedgerUsecase,
	distributionUC distribution.DistributionUsecase,
	tenantRepo domain.TenantRepository,
	cfg config.Sweeps,
) *BackgroundTasks {
	return &BackgroundTasks{
		TierUsecase:         tierUC,
		LedgerUsecase:       ledgerUC,
		DistributionUsecase: distributionUC,
		TenantRepo:          tenantRepo,
		cfg:                 cfg,
		cron:                cron.New(),
	}
}

func (bt *BackgroundTasks) Start(ctx context.Context) error {
	jobs := []struct {
		spec string
		name string
		run  func()
	}{
		{bt.cfg.TierExpiration, "tier_expiration", func() { bt.runTierSweep(ctx) }},
		{bt.cfg.DistributionExpiry, "distribution_expiry", func() { bt.runDistributionSweep(ctx) }},
		{bt.cfg.LedgerSync, "ledger_sync", func() { bt.runLedgerSync(ctx) }},
		{bt.cfg.MonthlyCycle, "monthly_cycle", func() { bt.runMonthlyCycle(ctx) }},
	}
	for _, job := range jobs {
		if _, err := bt.cron.AddFunc(job.spec, job.run); err != nil {
			return fmt.Errorf("scheduling %s (%q): %w", job.name, job.spec, err)
		}
	}

	bt.cron.Start()
	go func() {
		<-ctx.Done()
		bt.cron.Stop()
	}()
	return nil
}

func (bt *BackgroundTasks) runTierSweep(ctx context.Context) {
	tenants, err := bt.TenantRepo.GetTenants()
	if err != nil {
		slog.Error("tier sweep: listing tenants failed", "error", err.Error())
		return
	}
	for _, tenant := range tenants {
		report, err := bt.TierUsecase.SweepExpired(ctx, tenant.ID)
		if err != nil {
			slog.Error("tier sweep failed", "tenant_id", tenant.ID, "error", err.Error())
			continue
		}
		if report.TierExpirations > 0 || report.PromoReverts > 0 {
			slog.Info("tier sweep",
				"tenant_id", tenant.ID,
				"expired", report.TierExpirations,
				"promo_reverts", report.PromoReverts)
		}
	}
}

func (bt *BackgroundTasks) runDistributionSweep(ctx context.Context) {
	expired, err := bt.DistributionUsecase.SweepExpired(ctx)
	if err != nil {
		slog.Error("distribution sweep failed", "error", err.Error())
		return
	}
	if expired > 0 {
		slog.Info("distribution sweep", "expired", expired)
	}
}

func (bt *BackgroundTasks) runLedgerSync(ctx context.Context) {
	report, err := bt.LedgerUsecase.SyncPending(ctx, bt.cfg.SyncBatchSize)
	if err != nil {
		slog.Error("ledger sync failed", "error", err.Error())
		return
	}
	if report.Synced > 0 || report.Failed > 0 {
		slog.Info("ledger sync", "synced", report.Synced, "failed", report.Failed)
	}
}

func (bt *BackgroundTasks) runMonthlyCycle(ctx context.Context) {
	if err := bt.DistributionUsecase.RunMonthlyCycle(ctx, time.Now().UTC()); err != nil {
		slog.Error("monthly distribution cycle failed", "error", err.Error())
	}
}
