package logger

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/hostfolio/payout/internal/config"
	obscontext "github.com/hostfolio/payout/internal/observability/context"
)

// New builds the root logger for the service and installs it as the zap
// global so FromContext works everywhere.
func New(cfg config.Config) (*zap.Logger, error) {
	var log *zap.Logger
	var err error
	if cfg.IsProduction() {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("service", "payout"), zap.String("env", strings.TrimSpace(cfg.Environment)))
	zap.ReplaceGlobals(log)
	return log, nil
}

// FromContext returns the global logger enriched with request and trace
// identifiers carried on the context.
func FromContext(ctx context.Context) *zap.Logger {
	log := zap.L()
	if ctx == nil {
		return log
	}

	fields := make([]zap.Field, 0, 4)
	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if ownerID := obscontext.OwnerIDFromContext(ctx); ownerID != "" {
		fields = append(fields, zap.String("owner_id", ownerID))
	}

	span := trace.SpanContextFromContext(ctx)
	if span.HasTraceID() {
		fields = append(fields, zap.String("trace_id", span.TraceID().String()))
	}
	if span.HasSpanID() {
		fields = append(fields, zap.String("span_id", span.SpanID().String()))
	}

	if len(fields) == 0 {
		return log
	}
	return log.With(fields...)
}

// Module provides the root zap logger through fx.
var Module = fx.Module("logger",
	fx.Provide(New),
)
