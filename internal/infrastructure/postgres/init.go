package postgres

import (
	"log"

	"github.com/tradeup-app/loyalty-service/internal/config"
	"github.com/tradeup-app/loyalty-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.LoyaltyConfig) *gorm.DB {
	dsn := cfg.LoyaltyDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	if err := AutoMigrate(db); err != nil {
		log.Fatalf("failed to migrate db: %v\n", err.Error())
	}

	return db
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.TenantModel{},
		&models.TierModel{},
		&models.MemberModel{},
		&models.TierChangeLogModel{},
		&models.TierPromotionModel{},
		&models.MemberPromoUsageModel{},
		&models.TierEligibilityRuleModel{},
		&models.LedgerEntryModel{},
		&models.PendingDistributionModel{},
	)
}
