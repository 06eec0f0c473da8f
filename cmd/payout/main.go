package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hostfolio/payout/internal/clock"
	"github.com/hostfolio/payout/internal/config"
	"github.com/hostfolio/payout/internal/db"
	"github.com/hostfolio/payout/internal/delivery"
	"github.com/hostfolio/payout/internal/events"
	expensedomain "github.com/hostfolio/payout/internal/expense/domain"
	expenseservice "github.com/hostfolio/payout/internal/expense/service"
	listingdomain "github.com/hostfolio/payout/internal/listing/domain"
	"github.com/hostfolio/payout/internal/logger"
	"github.com/hostfolio/payout/internal/observability/tracing"
	reservationdomain "github.com/hostfolio/payout/internal/reservation/domain"
	"github.com/hostfolio/payout/internal/server"
	statementdomain "github.com/hostfolio/payout/internal/statement/domain"
	statementservice "github.com/hostfolio/payout/internal/statement/service"
)

func newSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func migrate(conn *gorm.DB, log *zap.Logger) error {
	if err := conn.AutoMigrate(
		&reservationdomain.Reservation{},
		&expensedomain.Expense{},
		&listingdomain.ListingProfile{},
		&statementdomain.Statement{},
		&events.OutboxEvent{},
	); err != nil {
		return err
	}
	log.Info("database migrated")
	return nil
}

func main() {
	fx.New(
		config.Module,
		logger.Module,
		clock.Module,
		tracing.Module,
		db.Module,
		events.Module,
		fx.Provide(newSnowflakeNode),

		statementservice.Module,
		expenseservice.Module,
		delivery.Module,
		server.Module,

		fx.Invoke(migrate),
	).Run()
}
