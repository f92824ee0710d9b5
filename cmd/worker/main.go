package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	crmclient "github.com/craftsite/fulfillment-api/internal/clients/http/crm"
	ordersnotify "github.com/craftsite/fulfillment-api/internal/domains/orders/adapters/notify"
	ordersports "github.com/craftsite/fulfillment-api/internal/domains/orders/ports"
	platformobservability "github.com/craftsite/fulfillment-api/internal/platform/observability"
	orderactivities "github.com/craftsite/fulfillment-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/craftsite/fulfillment-api/internal/platform/temporal/workflows/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "fulfillment-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	mail := ordersnotify.NewLogMailSender(logger)
	crm := buildCRMSync(logger)
	activities := orderactivities.NewActivities(mail, crm)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.DeliveryNotificationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.DeliveryNotificationWorkflow, workflow.RegisterOptions{Name: orderworkflows.DeliveryNotificationWorkflowName})
	w.RegisterActivityWithOptions(activities.SendDeliveryEmail, activity.RegisterOptions{Name: orderactivities.SendDeliveryEmailActivityName})
	w.RegisterActivityWithOptions(activities.SyncCRM, activity.RegisterOptions{Name: orderactivities.SyncCRMActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.DeliveryNotificationTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildCRMSync(logger *slog.Logger) ordersports.CRMSync {
	baseURL := strings.TrimSpace(os.Getenv("CRM_BASE_URL"))
	if baseURL == "" {
		logger.Warn("CRM_BASE_URL not set, delivered orders will not sync to CRM")
		return nil
	}
	crm, err := crmclient.NewClient(baseURL, &http.Client{Timeout: 5 * time.Second})
	if err != nil {
		logger.Warn("failed to configure CRM client", slog.String("error", err.Error()))
		return nil
	}
	return crm
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
