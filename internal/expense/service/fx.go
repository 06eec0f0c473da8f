package service

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hostfolio/payout/internal/clock"
	"github.com/hostfolio/payout/internal/events"
)

// Params collects the expense service dependencies.
type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Outbox *events.Outbox
}

func newService(p Params) Service {
	return NewService(p.DB, p.Log, p.GenID, p.Clock, p.Outbox)
}

// Module provides the expense ingestion service through fx.
var Module = fx.Module("expense.service",
	fx.Provide(newService),
)
