package distribution

import (
	"context"
	"fmt"
	"time"

	"github.com/tradeup-app/loyalty-service/internal/domain"
)

type RejectInput struct {
	TenantID string
	ID       string
	Rejector string
	Reason   string
}

// Reject declines a pending distribution. The period's reference key frees
// up, so a corrected run can be created afterwards.
func (uc *DefaultDistributionUsecase) Reject(ctx context.Context, input *RejectInput) (*domain.PendingDistribution, error) {
	d, err := uc.distRepo.GetDistributionByID(input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}
	if d.Status != domain.DistributionPending {
		return nil, fmt.Errorf("%w: distribution already %s", domain.ErrConflict, d.Status)
	}

	flipped, err := uc.distRepo.MarkRejected(input.TenantID, d.ID, input.Rejector, input.Reason, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !flipped {
		return nil, fmt.Errorf("%w: distribution already processed", domain.ErrConflict)
	}

	uc.metrics.RecordDistribution(string(domain.DistributionRejected))

	rejected, err := uc.distRepo.GetDistributionByID(input.TenantID, d.ID)
	if err != nil {
		return nil, err
	}
	uc.notifyDistribution(rejected)
	return rejected, nil
}
