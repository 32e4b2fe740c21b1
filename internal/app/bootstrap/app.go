package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/monday-lead-relay/internal/api/router"
	appconfig "github.com/wolfman30/monday-lead-relay/internal/config"
	"github.com/wolfman30/monday-lead-relay/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/monday-lead-relay/internal/http/middleware"
	"github.com/wolfman30/monday-lead-relay/internal/leads"
	"github.com/wolfman30/monday-lead-relay/internal/monday"
	"github.com/wolfman30/monday-lead-relay/internal/observability/metrics"
	"github.com/wolfman30/monday-lead-relay/pkg/logging"
)

// Version is reported by GET /.
const Version = "1.0.0"

// App is a fully wired relay ready to be served over HTTP or Lambda.
type App struct {
	Handler  http.Handler
	Registry *prometheus.Registry

	redis   *redis.Client
	limiter *httpmiddleware.RateLimiter
}

// Close releases the Redis connection and stops background loops.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

// MondayConfig translates the environment into a board configuration.
func MondayConfig(cfg *appconfig.Config) (monday.Config, error) {
	mapping, err := monday.ParseColumnMapping(cfg.MondayColumnMapping)
	if err != nil {
		return monday.Config{}, err
	}
	return monday.Config{
		Endpoint:      cfg.MondayAPIURL,
		APIToken:      cfg.MondayAPIToken,
		BoardID:       cfg.MondayBoardID,
		GroupID:       cfg.MondayGroupID,
		ColumnMapping: mapping,
		Timeout:       cfg.MondayHTTPTimeout,
	}, nil
}

// BuildApp wires config, monday.com client, failover, guard, alerts, metrics
// and the router.
func BuildApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mondayCfg, err := MondayConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	if mondayCfg.APIToken == "" || mondayCfg.BoardID == "" {
		logger.Warn("MONDAY_API_TOKEN or MONDAY_BOARD_ID not set; lead submissions will fail")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	leadMetrics := metrics.NewLeadMetrics(registry)

	client := monday.NewClient(mondayCfg, logger)
	submitter := monday.NewLeadSubmitter(client, mondayCfg, logger)
	coordinator := leads.NewCoordinator(submitter, logger).
		WithDelay(cfg.FailoverDelay).
		WithMetrics(leadMetrics)

	redisClient := BuildRedisClient(ctx, cfg, logger, true)
	closeRedis := func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}
	guard, err := BuildGuard(ctx, redisClient, cfg, logger)
	if err != nil {
		closeRedis()
		return nil, err
	}

	leadsCfg := handlers.LeadsConfig{
		Coordinator: coordinator,
		Guard:       guard,
		Monday:      submitter.Config(),
		Metrics:     leadMetrics,
		Logger:      logger,
	}
	alerter, err := BuildAlerter(ctx, cfg, logger)
	if err != nil {
		closeRedis()
		return nil, err
	}
	if alerter != nil {
		leadsCfg.Alerter = alerter
	}

	var configuredMapping *monday.ColumnMapping
	if cfg.MondayColumnMapping != "" {
		m := mondayCfg.ColumnMapping
		configuredMapping = &m
	}

	var limiter *httpmiddleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	handler := router.New(&router.Config{
		Logger:       logger,
		InfoHandler:  handlers.NewInfoHandler(Version, cfg.Env, cfg.EnableDiagnostics),
		LeadsHandler: handlers.NewLeadsHandler(leadsCfg),
		MondayHandler: handlers.NewMondayHandler(handlers.MondayConfig{
			Client:        client,
			BoardID:       mondayCfg.BoardID,
			ColumnMapping: configuredMapping,
			Logger:        logger,
		}),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        limiter,
		EnableDiagnostics:  cfg.EnableDiagnostics,
	})

	return &App{
		Handler:  handler,
		Registry: registry,
		redis:    redisClient,
		limiter:  limiter,
	}, nil
}
