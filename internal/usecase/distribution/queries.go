package distribution

import (
	"context"

	"github.com/tradeup-app/loyalty-service/internal/domain"
)

func (uc *DefaultDistributionUsecase) GetDistribution(ctx context.Context, tenantID, id string) (*domain.PendingDistribution, error) {
	return uc.distRepo.GetDistributionByID(tenantID, id)
}

func (uc *DefaultDistributionUsecase) ListDistributions(ctx context.Context, tenantID string, status domain.DistributionStatus, includeExpired bool) ([]*domain.PendingDistribution, error) {
	return uc.distRepo.GetDistributions(tenantID, status, includeExpired)
}
