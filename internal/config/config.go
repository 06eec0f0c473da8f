package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config carries environment-driven settings for the payout service.
type Config struct {
	Environment string
	HTTPAddr    string
	DatabaseURL string

	// ListingCacheTTL bounds how long listing rule profiles are served from
	// the in-memory cache before being re-read from storage.
	ListingCacheTTL time.Duration

	// DefaultFeeSchedule selects the tech/insurance fee strategy when a
	// statement request does not name one ("flat" or "legacy").
	DefaultFeeSchedule string

	// DeliveryWebhookURL, when set, routes statement deliveries to the
	// notification service instead of the log-backed mailer.
	DeliveryWebhookURL string

	Tracing TracingConfig
}

// TracingConfig configures the OTLP trace exporter.
type TracingConfig struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	SamplingRatio    float64
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

// Load reads configuration from the environment. A local .env file is applied
// first when present.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Environment:        envOr("PAYOUT_ENV", "development"),
		HTTPAddr:           envOr("PAYOUT_HTTP_ADDR", ":8080"),
		DatabaseURL:        envOr("DATABASE_URL", ""),
		ListingCacheTTL:    envDurationOr("PAYOUT_LISTING_CACHE_TTL", 5*time.Minute),
		DefaultFeeSchedule: envOr("PAYOUT_FEE_SCHEDULE", "flat"),
		DeliveryWebhookURL: envOr("PAYOUT_DELIVERY_WEBHOOK_URL", ""),
		Tracing: TracingConfig{
			Enabled:          envBoolOr("OTEL_TRACES_ENABLED", false),
			ExporterEndpoint: envOr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ExporterProtocol: envOr("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
			SamplingRatio:    envFloatOr("OTEL_TRACES_SAMPLER_RATIO", 1),
		},
	}
	return cfg
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envBoolOr(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envFloatOr(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

// Module provides Config through fx.
var Module = fx.Module("config",
	fx.Provide(Load),
)
