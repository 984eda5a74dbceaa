// Package app assembles storage, queue and services from configuration. It
// is shared by the server and worker binaries.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/unclebandit/mailer-backend/internal/config"
	"github.com/unclebandit/mailer-backend/internal/db"
	"github.com/unclebandit/mailer-backend/internal/filestore"
	"github.com/unclebandit/mailer-backend/internal/queue"
	"github.com/unclebandit/mailer-backend/internal/repository"
	"github.com/unclebandit/mailer-backend/internal/service"
	"github.com/unclebandit/mailer-backend/internal/tracker"
	"github.com/unclebandit/mailer-backend/internal/transport"
	"github.com/unclebandit/mailer-backend/internal/webhook"
)

// Storage is one opened backend. DB is nil for the file store.
type Storage struct {
	Repos *repository.Repositories
	DB    *sql.DB
}

func (s *Storage) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// OpenStorage uses PostgreSQL when DATABASE_URL is set and the JSON file
// store otherwise.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Storage, error) {
	if cfg.DatabaseURL != "" {
		conn, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx, conn); err != nil {
			conn.Close()
			return nil, err
		}
		logger.Info("storage ready", "backend", "postgres")
		return &Storage{Repos: repository.NewPostgres(conn), DB: conn}, nil
	}

	store, err := filestore.Open(cfg.DataFile)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	logger.Info("storage ready", "backend", "file", "path", store.Path())
	return &Storage{Repos: store.Repositories()}, nil
}

// AMQP when AMQP_URL is set, in-process otherwise.
func OpenQueue(cfg *config.Config, logger *slog.Logger) (queue.Queue, error) {
	if cfg.AMQPURL == "" {
		return queue.NewInMemoryQueue(logger), nil
	}
	return queue.NewAMQPQueue(cfg.AMQPURL, cfg.AMQPExchange, logger)
}

// Verifier checks Mailgun signatures when a signing key is configured and
// accepts everything otherwise.
func Verifier(cfg *config.Config, logger *slog.Logger) webhook.Verifier {
	if cfg.WebhookSigningKey == "" {
		logger.Warn("MAILGUN_WEBHOOK_SIGNING_KEY not set, webhook signatures are not verified")
		return webhook.Noop{}
	}
	return webhook.NewMailgunVerifier(cfg.WebhookSigningKey, cfg.WebhookMaxAge)
}

func TransportResolver(cfg *config.Config, settings repository.SettingRepositoryInterface, logger *slog.Logger) *transport.Resolver {
	return &transport.Resolver{
		Settings: settings,
		Defaults: transport.Defaults{
			Provider:      cfg.MailProvider,
			MailgunAPIKey: cfg.MailgunAPIKey,
			MailgunDomain: cfg.MailgunDomain,
			MailgunEU:     cfg.MailgunEU,
			FromName:      cfg.MailFromName,
			ResendAPIKey:  cfg.ResendAPIKey,
			ResendFrom:    cfg.ResendFromEmail,
		},
		Logger: logger.With("component", "transport"),
	}
}

// Services is every domain service wired onto one storage backend.
type Services struct {
	Auth      *service.AuthService
	Tokens    service.TokenService
	Access    *service.AccessService
	Contacts  *service.ContactService
	Lists     *service.ListService
	Templates *service.TemplateService
	Campaigns *service.CampaignService
	Shares    *service.ShareService
	Settings  *service.SettingsService
	Stats     *service.StatsService
	Webhooks  *service.WebhookService
}

func NewServices(cfg *config.Config, repos *repository.Repositories, q queue.Queue, logger *slog.Logger) *Services {
	trk := tracker.New(repos.Deliveries)
	tokens := service.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)
	access := &service.AccessService{
		Lists:     repos.Lists,
		Templates: repos.Templates,
		Campaigns: repos.Campaigns,
		Shares:    repos.Shares,
	}

	return &Services{
		Auth:      &service.AuthService{Users: repos.Users, Tokens: tokens, Logger: logger.With("component", "auth")},
		Tokens:    tokens,
		Access:    access,
		Contacts:  &service.ContactService{Contacts: repos.Contacts},
		Lists:     &service.ListService{Lists: repos.Lists, Contacts: repos.Contacts, Access: access},
		Templates: &service.TemplateService{Templates: repos.Templates, Access: access},
		Campaigns: &service.CampaignService{
			Campaigns:  repos.Campaigns,
			Lists:      repos.Lists,
			Templates:  repos.Templates,
			Tracker:    trk,
			Transports: TransportResolver(cfg, repos.Settings, logger),
			Access:     access,
			Queue:      q,
			Logger:     logger.With("component", "send"),
			MarkFailed: cfg.SendMarkFailed,
		},
		Shares:   &service.ShareService{Shares: repos.Shares, Users: repos.Users, Access: access},
		Settings: &service.SettingsService{Settings: repos.Settings},
		Stats:    &service.StatsService{Contacts: repos.Contacts, Lists: repos.Lists, Campaigns: repos.Campaigns, Tracker: trk},
		Webhooks: &service.WebhookService{
			Tracker:  trk,
			Verifier: Verifier(cfg, logger),
			Queue:    q,
			Logger:   logger.With("component", "webhook"),
		},
	}
}
