// Package server exposes the payout HTTP API: statement calculation and
// retrieval, guarded delivery, expense ingestion, and payout week resolution.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/hostfolio/payout/internal/config"
	"github.com/hostfolio/payout/internal/delivery"
	expenseservice "github.com/hostfolio/payout/internal/expense/service"
	"github.com/hostfolio/payout/internal/logger"
	"github.com/hostfolio/payout/internal/observability/metrics"
	"github.com/hostfolio/payout/internal/period"
	statementdomain "github.com/hostfolio/payout/internal/statement/domain"
)

// Deps collects everything the router serves.
type Deps struct {
	Statements statementdomain.Service
	Expenses   expenseservice.Service
	Guard      *delivery.Guard
	Resolver   *period.Resolver
}

// NewRouter builds the gin engine with the full middleware chain.
func NewRouter(cfg config.Config, deps Deps) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))

	httpMetrics, err := metrics.NewHTTPMetrics(metrics.Config{
		ServiceName: "payout",
		Environment: cfg.Environment,
	}, otel.GetMeterProvider())
	if err != nil {
		return nil, err
	}
	router.Use(metrics.GinMiddleware(httpMetrics))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	(&statementHandlers{statements: deps.Statements, guard: deps.Guard}).register(router)
	(&expenseHandlers{expenses: deps.Expenses}).register(router)
	(&periodHandlers{resolver: deps.Resolver}).register(router)

	return router, nil
}

// Params collects the server dependencies.
type Params struct {
	fx.In

	Cfg        config.Config
	Log        *zap.Logger
	Statements statementdomain.Service
	Expenses   expenseservice.Service
	Guard      *delivery.Guard
	Resolver   *period.Resolver
}

func newRouter(p Params) (*gin.Engine, error) {
	return NewRouter(p.Cfg, Deps{
		Statements: p.Statements,
		Expenses:   p.Expenses,
		Guard:      p.Guard,
		Resolver:   p.Resolver,
	})
}

func runServer(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, router *gin.Engine) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

// Module provides the HTTP router and server lifecycle through fx.
var Module = fx.Module("server",
	fx.Provide(newRouter),
	fx.Provide(period.NewResolver),
	fx.Invoke(runServer),
)
