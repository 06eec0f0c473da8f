package service

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hostfolio/payout/internal/clock"
	"github.com/hostfolio/payout/internal/config"
	"github.com/hostfolio/payout/internal/events"
	"github.com/hostfolio/payout/internal/statement/domain"
)

// Params collects the statement service dependencies.
type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Cfg    config.Config
	Outbox *events.Outbox
}

func newService(p Params) domain.Service {
	return NewService(p.DB, p.Log, p.GenID, p.Clock, p.Cfg, p.Outbox)
}

// Module provides the statement service through fx.
var Module = fx.Module("statement.service",
	fx.Provide(newService),
)
