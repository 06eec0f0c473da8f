package db

import (
	"errors"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hostfolio/payout/internal/config"
)

var ErrMissingDatabaseURL = errors.New("missing_database_url")

// Open connects to Postgres using the configured DSN.
func Open(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	conn, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	log.Info("database connected")
	return conn, nil
}

// Module provides the gorm connection through fx.
var Module = fx.Module("db",
	fx.Provide(Open),
)
