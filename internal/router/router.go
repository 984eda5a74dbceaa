package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/unclebandit/mailer-backend/internal/controller"
	"github.com/unclebandit/mailer-backend/internal/handler"
	customMiddleware "github.com/unclebandit/mailer-backend/internal/middleware"
	"github.com/unclebandit/mailer-backend/internal/service"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Tokens    service.TokenService
	Auth      *controller.AuthController
	Contacts  *controller.ContactController
	Lists     *controller.ListController
	Templates *controller.TemplateController
	Campaigns *controller.CampaignController
	Shares    *controller.ShareController
	Settings  *controller.SettingsController
	Stats     *handler.StatsHandler
	Webhooks  *handler.WebhookHandler
	Health    *handler.HealthHandler
}

const requestTimeout = 30 * time.Second

// sendTimeout bounds the request only. A send that outlives it still runs
// to completion.
const sendTimeout = 10 * time.Minute

func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(customMiddleware.MetricsMiddleware)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health.Liveness)
	r.Get("/readyz", h.Health.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			r.Post("/auth/register", h.Auth.Register)
			r.Post("/auth/login", h.Auth.Login)
			r.Post("/webhooks/mailgun", h.Webhooks.Mailgun)
		})

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.AuthMiddleware(h.Tokens))

			r.Route("/campaigns", func(r chi.Router) {
				r.With(middleware.Timeout(sendTimeout)).Post("/{id}/send", h.Campaigns.SendCampaign)

				r.Group(func(r chi.Router) {
					r.Use(middleware.Timeout(requestTimeout))
					r.Get("/", h.Campaigns.ListCampaigns)
					r.Post("/", h.Campaigns.CreateCampaign)
					r.Get("/{id}", h.Campaigns.GetCampaignDetails)
					r.Put("/{id}", h.Campaigns.UpdateCampaign)
					r.Delete("/{id}", h.Campaigns.DeleteCampaign)
					r.Get("/{id}/deliveries", h.Campaigns.DeliveryRecords)
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(requestTimeout))

				r.Get("/auth/me", h.Auth.Me)

				r.Route("/contacts", func(r chi.Router) {
					r.Get("/", h.Contacts.List)
					r.Post("/", h.Contacts.Create)
					r.Get("/{id}", h.Contacts.Get)
					r.Put("/{id}", h.Contacts.Update)
					r.Delete("/{id}", h.Contacts.Delete)
				})

				r.Route("/lists", func(r chi.Router) {
					r.Get("/", h.Lists.List)
					r.Post("/", h.Lists.Create)
					r.Get("/{id}", h.Lists.Get)
					r.Put("/{id}", h.Lists.Update)
					r.Delete("/{id}", h.Lists.Delete)
					r.Post("/{id}/contacts", h.Lists.AddContact)
					r.Delete("/{id}/contacts/{contactId}", h.Lists.RemoveContact)
				})

				r.Route("/templates", func(r chi.Router) {
					r.Get("/", h.Templates.List)
					r.Post("/", h.Templates.Create)
					r.Get("/{id}", h.Templates.Get)
					r.Put("/{id}", h.Templates.Update)
					r.Delete("/{id}", h.Templates.Delete)
				})

				r.Post("/shares", h.Shares.Create)
				r.Get("/shares/{resourceType}/{resourceId}", h.Shares.ListForResource)
				r.Delete("/shares/{shareId}", h.Shares.Delete)
				r.Get("/shared-with-me", h.Shares.SharedWithMe)

				r.Get("/settings", h.Settings.Get)
				r.Put("/settings", h.Settings.Update)
				r.Post("/settings", h.Settings.Update)

				r.Get("/stats", h.Stats.Dashboard)
			})
		})
	})

	return r
}
