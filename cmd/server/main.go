// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/unclebandit/mailer-backend/internal/app"
	"github.com/unclebandit/mailer-backend/internal/config"
	"github.com/unclebandit/mailer-backend/internal/controller"
	"github.com/unclebandit/mailer-backend/internal/handler"
	"github.com/unclebandit/mailer-backend/internal/logger"
	"github.com/unclebandit/mailer-backend/internal/metrics"
	"github.com/unclebandit/mailer-backend/internal/queue"
	"github.com/unclebandit/mailer-backend/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewJSONLogger("info").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.NewJSONLogger(cfg.LogLevel)

	if cfg.JWTSecret == "" {
		log.Error("JWT_SECRET is required")
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

	q, err := app.OpenQueue(cfg, log)
	if err != nil {
		log.Error("failed to open queue", "error", err)
		os.Exit(1)
	}
	defer q.Close()
	if err := queue.StartAuditSubscribers(q, log); err != nil {
		log.Error("failed to subscribe", "error", err)
		os.Exit(1)
	}

	metrics.Register()
	svc := app.NewServices(cfg, storage.Repos, q, log)

	var pinger handler.Pinger
	if storage.DB != nil {
		pinger = storage.DB
	}

	httpLog := log.With("component", "http")
	r := router.NewRouter(&router.Handlers{
		Tokens:    svc.Tokens,
		Auth:      &controller.AuthController{Auth: svc.Auth, Logger: httpLog},
		Contacts:  &controller.ContactController{Contacts: svc.Contacts, Logger: httpLog},
		Lists:     &controller.ListController{Lists: svc.Lists, Logger: httpLog},
		Templates: &controller.TemplateController{Templates: svc.Templates, Logger: httpLog},
		Campaigns: &controller.CampaignController{CampaignService: svc.Campaigns, Logger: httpLog},
		Shares:    &controller.ShareController{Shares: svc.Shares, Logger: httpLog},
		Settings:  &controller.SettingsController{Settings: svc.Settings, Logger: httpLog},
		Stats:     &handler.StatsHandler{Stats: svc.Stats, Logger: httpLog},
		Webhooks:  &handler.WebhookHandler{Webhooks: svc.Webhooks, Logger: httpLog},
		Health:    handler.NewHealthHandler(pinger, httpLog),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server running", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	log.Info("server stopped")
}
