package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	portalserver "github.com/craftsite/fulfillment-api/server"

	ordersmemory "github.com/craftsite/fulfillment-api/internal/domains/orders/adapters/memory"
	ordersnotify "github.com/craftsite/fulfillment-api/internal/domains/orders/adapters/notify"
	ordersobs "github.com/craftsite/fulfillment-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/craftsite/fulfillment-api/internal/domains/orders/adapters/persistence/postgres"
	ordersredis "github.com/craftsite/fulfillment-api/internal/domains/orders/adapters/redis"
	ordersworkflows "github.com/craftsite/fulfillment-api/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/craftsite/fulfillment-api/internal/domains/orders/application"
	ordersports "github.com/craftsite/fulfillment-api/internal/domains/orders/ports"

	crmclient "github.com/craftsite/fulfillment-api/internal/clients/http/crm"
	platformmigrations "github.com/craftsite/fulfillment-api/internal/platform/migrations"
	platformobservability "github.com/craftsite/fulfillment-api/internal/platform/observability"
	platformpostgres "github.com/craftsite/fulfillment-api/internal/platform/postgres"
)

// Run boots the fulfillment HTTP API with observability, repositories, and
// the delivery fan-out wired.
func Run(ctx context.Context) error {
	const serviceName = "fulfillment-api"
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	repo, cleanupRepo := buildOrderRepository(ctx, cfg, logger)
	defer cleanupRepo()

	dedup, cleanupDedup := buildEventDedup(ctx, cfg, logger)
	defer cleanupDedup()

	mail := ordersnotify.NewLogMailSender(logger)
	crm := buildCRMSync(cfg, logger)

	var notifier ordersports.DeliveryNotifier = ordersworkflows.NewInlineDeliveryNotifier(mail, crm, logger)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal unavailable, running delivery fan-out inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		notifier = ordersworkflows.NewTemporalDeliveryNotifier(temporalClient)
		logger.Info("Temporal delivery workflow enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	serviceOpts := []ordersapp.Option{
		ordersapp.WithEventDedup(dedup),
		ordersapp.WithDeliveryNotifier(notifier),
	}
	if cfg.SitePublishBaseURL != "" {
		serviceOpts = append(serviceOpts, ordersapp.WithPublishBaseURL(cfg.SitePublishBaseURL))
	}
	coreService := ordersapp.NewService(repo, serviceOpts...)
	orderService := ordersobs.New(
		coreService,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	handlers := portalserver.ApiHandleFunctions{
		OrdersAPI:   portalserver.NewOrdersAPI(orderService),
		PipelineAPI: portalserver.NewPipelineAPI(orderService),
		WebhooksAPI: portalserver.NewWebhooksAPI(orderService),
	}

	router := portalserver.NewRouter(handlers)
	router.Use(otelgin.Middleware(serviceName))
	router.Use(cors.New(corsConfig(cfg)))

	addr := ":" + cfg.Port
	logger.Info("fulfillment API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("fulfillment API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

func buildOrderRepository(ctx context.Context, cfg Config, logger *slog.Logger) (ordersports.Repository, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory order repository")
		return ordersmemory.NewRepository(), func() {}
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return ordersmemory.NewRepository(), func() {}
	}
	if err := platformmigrations.Run(db); err != nil {
		logger.Error("failed to run migrations", slog.String("error", err.Error()))
		_ = platformpostgres.Close(db)
		return ordersmemory.NewRepository(), func() {}
	}
	logger.Info("order repository configured with postgres")
	return orderspostgres.NewRepository(db), func() { _ = platformpostgres.Close(db) }
}

func buildEventDedup(ctx context.Context, cfg Config, logger *slog.Logger) (ordersports.EventDedup, func()) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, falling back to in-memory webhook dedup")
		return ordersmemory.NewEventDedup(), func() {}
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("failed to connect to redis, falling back to in-memory webhook dedup", slog.String("error", err.Error()))
		_ = rdb.Close()
		return ordersmemory.NewEventDedup(), func() {}
	}
	logger.Info("webhook dedup configured with redis", slog.String("addr", cfg.RedisAddr))
	return ordersredis.NewEventDedup(rdb), func() { _ = rdb.Close() }
}

func buildCRMSync(cfg Config, logger *slog.Logger) ordersports.CRMSync {
	if cfg.CRMBaseURL == "" {
		logger.Warn("CRM_BASE_URL not set, delivered orders will not sync to CRM")
		return nil
	}
	crm, err := crmclient.NewClient(cfg.CRMBaseURL, &http.Client{Timeout: 5 * time.Second})
	if err != nil {
		logger.Warn("failed to configure CRM client", slog.String("error", err.Error()))
		return nil
	}
	return crm
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	logger := workerlog.NewStructuredLogger(effectiveLogger(instruments))
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    logger,
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func corsConfig(cfg Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	if len(cfg.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORSAllowOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "X-Actor-Id", "X-Internal-Actor")
	return corsCfg
}
