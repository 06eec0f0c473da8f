package events

import "go.uber.org/fx"

// Module provides the outbox through fx.
var Module = fx.Module("events",
	fx.Provide(NewOutbox),
)
