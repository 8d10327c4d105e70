package config

import (
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type LoyaltyConfig struct {
	Env                string `yaml:"env" env-default:"local"`
	HTTPServer         `yaml:"http_server"`
	LoyaltyDB          `yaml:"loyalty_db"`
	LogConfig          `yaml:"log_config"`
	KafkaService       `yaml:"kafka-service"`
	StoreCreditService `yaml:"storecredit-service"`
	Sweeps             `yaml:"sweeps"`
	Distribution       `yaml:"distribution"`
	Cache              `yaml:"cache"`
}

type HTTPServer struct {
	Host string `yaml:"host" env-default:"0.0.0.0"`
	Port string `yaml:"port" env-default:"8080"`
}

type LoyaltyDB struct {
	Dsn string `yaml:"dsn"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env-default:"info"`
	LogFormat string `yaml:"log_format" env-default:"json"`
	LogOutput string `yaml:"log_output" env-default:"stdout"`
}

type KafkaService struct {
	Host  string `yaml:"host"`
	Port  string `yaml:"port"`
	Topic string `yaml:"topic" env-default:"loyalty-events"`
}

type StoreCreditService struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type Sweeps struct {
	// Cron expressions, robfig/cron format.
	TierExpiration     string `yaml:"tier_expiration" env-default:"*/10 * * * *"`
	DistributionExpiry string `yaml:"distribution_expiry" env-default:"0 * * * *"`
	LedgerSync         string `yaml:"ledger_sync" env-default:"*/5 * * * *"`
	MonthlyCycle       string `yaml:"monthly_cycle" env-default:"0 6 1 * *"`
	SyncBatchSize      int    `yaml:"sync_batch_size" env-default:"100"`
}

type Distribution struct {
	PendingExpirationDays int `yaml:"pending_expiration_days" env-default:"7"`
}

type Cache struct {
	TTLSeconds int `yaml:"ttl_seconds" env-default:"300"`
}

func MustLoad() *LoyaltyConfig {
	configPath := os.Getenv("LOYALTY_CONFIG_PATH")
	if configPath == "" {
		log.Fatalf("LOYALTY_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	var cfg LoyaltyConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
