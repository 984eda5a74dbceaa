// cmd/worker/main.go consumes provider events relayed onto the broker and
// applies them the same way the webhook endpoint does.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/unclebandit/mailer-backend/internal/app"
	"github.com/unclebandit/mailer-backend/internal/config"
	"github.com/unclebandit/mailer-backend/internal/logger"
	"github.com/unclebandit/mailer-backend/internal/metrics"
	"github.com/unclebandit/mailer-backend/internal/queue"
	"github.com/unclebandit/mailer-backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewJSONLogger("info").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.NewJSONLogger(cfg.LogLevel).With("component", "worker")

	if cfg.AMQPURL == "" || cfg.DatabaseURL == "" {
		log.Error("AMQP_URL and DATABASE_URL are required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := app.OpenStorage(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer storage.Close()

	amqpQueue, err := queue.NewAMQPQueue(cfg.AMQPURL, cfg.AMQPExchange, log)
	if err != nil {
		log.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpQueue.Close()

	jobs, err := amqpQueue.Consume(ctx, queue.ProviderEventsQueue)
	if err != nil {
		log.Error("failed to consume", "queue", queue.ProviderEventsQueue, "error", err)
		os.Exit(1)
	}

	metrics.Register()
	svc := app.NewServices(cfg, storage.Repos, amqpQueue, log)
	worker := service.NewWorker(svc.Webhooks, jobs, log)

	log.Info("worker running, waiting for messages", "queue", queue.ProviderEventsQueue)
	worker.Start(ctx)
	log.Info("worker stopped")
}
