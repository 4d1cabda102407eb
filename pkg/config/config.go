package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Ledger       LedgerConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GELATO_APP_ENV" required:"true"`
	Port         string `envconfig:"GELATO_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"GELATO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GELATO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"GELATO_DB_DSN" required:"true"`

	MaxOpenConns    int           `envconfig:"GELATO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GELATO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GELATO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GELATO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// LedgerConfig tunes the optimistic-transaction behaviour of the stock ledger.
type LedgerConfig struct {
	MaxAdjustAttempts   int           `envconfig:"GELATO_LEDGER_MAX_ADJUST_ATTEMPTS" default:"5"`
	NotificationTimeout time.Duration `envconfig:"GELATO_LEDGER_NOTIFICATION_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GELATO_FEATURE_AUTO_MIGRATE" default:"false"`
}
