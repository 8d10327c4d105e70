package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tradeup-app/loyalty-service/internal/domain"
)

// GetBalance sums the member's entries. The cache in front is invalidated on
// every write and only trims read latency; the ledger stays the source of
// truth.
func (uc *DefaultLedgerUsecase) GetBalance(ctx context.Context, tenantID, memberID string) (decimal.Decimal, error) {
	if tenantID == "" || memberID == "" {
		return decimal.Zero, fmt.Errorf("%w: tenant and member are required", domain.ErrValidation)
	}

	key := balanceKey(tenantID, memberID)
	if uc.balanceCache != nil {
		if cached, ok := uc.balanceCache.Get(key); ok {
			return cached.(decimal.Decimal), nil
		}
	}

	balance, err := uc.ledgerRepo.SumAmount(tenantID, memberID)
	if err != nil {
		return decimal.Zero, err
	}
	if uc.balanceCache != nil {
		uc.balanceCache.Set(key, balance)
	}
	return balance, nil
}
