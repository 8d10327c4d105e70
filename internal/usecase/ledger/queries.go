package ledger

import (
	"context"

	"github.com/tradeup-app/loyalty-service/internal/domain"
)

func (uc *DefaultLedgerUsecase) GetMemberEntries(ctx context.Context, tenantID, memberID string, limit int) ([]*domain.LedgerEntry, error) {
	return uc.ledgerRepo.GetMemberEntries(tenantID, memberID, limit)
}
