package setup

import (
	"fmt"
	"time"

	"github.com/tradeup-app/loyalty-service/internal/config"
	"github.com/tradeup-app/loyalty-service/internal/domain"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/cache"
	publisher "github.com/tradeup-app/loyalty-service/internal/infrastructure/kafka"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/metrics"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/postgres"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/postgres/repository"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/storecredit"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config       *config.LoyaltyConfig
	DB           *gorm.DB
	Publisher    *publisher.KafkaPublisher
	CreditClient *storecredit.HTTPCreditClient
	BalanceCache *cache.Cache
	Metrics      *metrics.LoyaltyMetrics
	Repositories *Repositories
}

type Repositories struct {
	TenantRepo  domain.TenantRepository
	MemberRepo  domain.MemberRepository
	TierRepo    domain.TierRepository
	TierLogRepo domain.TierLogRepository
	PromoRepo   domain.PromotionRepository
	RuleRepo    domain.EligibilityRuleRepository
	LedgerRepo  domain.LedgerRepository
	DistRepo    domain.DistributionRepository
}

func InitializeDependencies() (*Dependencies, error) {
	cfg := config.MustLoad()

	db := postgres.MustInitDB(cfg)

	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	loyaltyPublisher := publisher.NewKafkaPublisher(brokers, cfg.KafkaService.Topic)

	creditClient := storecredit.NewHTTPCreditClient(
		fmt.Sprintf("%s:%s", cfg.StoreCreditService.Host, cfg.StoreCreditService.Port))

	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second

	repos := &Repositories{
		TenantRepo:  repository.NewDefaultTenantRepository(db),
		MemberRepo:  repository.NewDefaultMemberRepository(db),
		TierRepo:    repository.NewDefaultTierRepository(db),
		TierLogRepo: repository.NewDefaultTierLogRepository(db),
		PromoRepo:   repository.NewDefaultPromotionRepository(db),
		RuleRepo:    repository.NewDefaultEligibilityRuleRepository(db),
		LedgerRepo:  repository.NewDefaultLedgerRepository(db),
		DistRepo:    repository.NewDefaultDistributionRepository(db),
	}

	return &Dependencies{
		Config:       cfg,
		DB:           db,
		Publisher:    loyaltyPublisher,
		CreditClient: creditClient,
		BalanceCache: cache.New(ttl),
		Metrics:      metrics.NewLoyaltyMetrics(),
		Repositories: repos,
	}, nil
}
