package distribution

import (
	"context"
	"log/slog"
	"time"

	"github.com/tradeup-app/loyalty-service/internal/domain"
)

// SweepExpired flips pending rows past their deadline. The status guard in
// the repository makes re-flips no-ops, so overlapping sweep workers each
// count only the rows they actually flipped.
func (uc *DefaultDistributionUsecase) SweepExpired(ctx context.Context) (int, error) {
	started := time.Now()

	stale, err := uc.distRepo.FindExpiredPending(started.UTC())
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, d := range stale {
		flipped, err := uc.distRepo.MarkExpired(d.TenantID, d.ID)
		if err != nil {
			slog.Error("failed to expire distribution",
				"tenant_id", d.TenantID, "distribution_id", d.ID, "error", err.Error())
			continue
		}
		if !flipped {
			continue
		}
		expired++
		uc.metrics.RecordDistribution(string(domain.DistributionExpired))
		d.Status = domain.DistributionExpired
		uc.notifyDistribution(d)
	}

	uc.metrics.RecordSweep("distribution_expiry", started)
	return expired, nil
}
