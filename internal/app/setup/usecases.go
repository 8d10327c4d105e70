package setup

import (
	"github.com/tradeup-app/loyalty-service/internal/usecase/distribution"
	"github.com/tradeup-app/loyalty-service/internal/usecase/ledger"
	"github.com/tradeup-app/loyalty-service/internal/usecase/tier"
)

type UseCases struct {
	TierUsecase         tier.TierUsecase
	LedgerUsecase       ledger.LedgerUsecase
	DistributionUsecase distribution.DistributionUsecase
}

func InitializeUseCases(deps *Dependencies) *UseCases {
	tierUsecase := tier.NewDefaultTierUsecase(
		deps.Repositories.TierLogRepo,
		deps.Repositories.TierRepo,
		deps.Repositories.MemberRepo,
		deps.Repositories.PromoRepo,
		deps.Repositories.RuleRepo,
		deps.Publisher,
		deps.Metrics,
		tier.DefaultRanking(),
	)

	ledgerUsecase := ledger.NewDefaultLedgerUsecase(
		deps.Repositories.LedgerRepo,
		deps.Repositories.TenantRepo,
		deps.CreditClient,
		deps.BalanceCache,
		deps.Publisher,
		deps.Metrics,
	)

	distributionUsecase := distribution.NewDefaultDistributionUsecase(
		deps.Repositories.DistRepo,
		deps.Repositories.TenantRepo,
		deps.Repositories.MemberRepo,
		deps.Repositories.TierRepo,
		ledgerUsecase,
		deps.Publisher,
		deps.Metrics,
		deps.Config.Distribution.PendingExpirationDays,
	)

	return &UseCases{
		TierUsecase:         tierUsecase,
		LedgerUsecase:       ledgerUsecase,
		DistributionUsecase: distributionUsecase,
	}
}
