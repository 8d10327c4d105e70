package tier

import (
	"context"

	"github.com/tradeup-app/loyalty-service/internal/domain"
)

func (uc *DefaultTierUsecase) GetMemberHistory(ctx context.Context, tenantID, memberID string, limit int) ([]*domain.TierChangeLog, error) {
	return uc.logRepo.GetMemberHistory(tenantID, memberID, limit)
}
