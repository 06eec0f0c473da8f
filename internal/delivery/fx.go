package delivery

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/hostfolio/payout/internal/config"
	"github.com/hostfolio/payout/internal/events"
)

// Params collects the delivery guard dependencies.
type Params struct {
	fx.In

	Cfg    config.Config
	Log    *zap.Logger
	Outbox *events.Outbox
}

func newMailer(p Params) Mailer {
	if p.Cfg.DeliveryWebhookURL != "" {
		return NewWebhookMailer(p.Cfg.DeliveryWebhookURL)
	}
	return LogMailer{Log: p.Log.Named("delivery.mailer")}
}

func newGuard(p Params, mailer Mailer) *Guard {
	return NewGuard(mailer, p.Log, p.Outbox)
}

// Module provides the delivery guard through fx.
var Module = fx.Module("delivery",
	fx.Provide(newMailer),
	fx.Provide(newGuard),
)
