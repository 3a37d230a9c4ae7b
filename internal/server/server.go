package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/azcoov/push/internal/dispatch"
	"github.com/azcoov/push/internal/handler"
	"github.com/azcoov/push/internal/middleware"
	"github.com/azcoov/push/internal/money"
	"github.com/azcoov/push/internal/relay"
	"github.com/azcoov/push/internal/store"
	"github.com/azcoov/push/internal/stripeapi"
	"github.com/azcoov/push/internal/transport"
)

type Server struct {
	db          *sql.DB
	users       *store.UserStore
	tokens      *store.DeviceTokenStore
	relay       *relay.Service
	webhookH    *handler.WebhookHandler
	userH       *handler.UserHandler
	deviceH     *handler.DeviceHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

type Config struct {
	Transport transport.Transport
	Lookup    stripeapi.AccountLookup
	Dispatch  dispatch.Config
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	users := store.NewUserStore(db)
	tokens := store.NewDeviceTokenStore(db)

	dispatcher := dispatch.New(cfg.Transport, cfg.Dispatch, tokens.Remove, logger.With("component", "dispatch"))
	relaySvc := relay.New(users, tokens, dispatcher, money.Formatter{}, logger.With("component", "relay"))

	return &Server{
		db:          db,
		users:       users,
		tokens:      tokens,
		relay:       relaySvc,
		webhookH:    handler.NewWebhookHandler(relaySvc, logger.With("component", "webhook")),
		userH:       handler.NewUserHandler(users, cfg.Lookup, logger.With("component", "user")),
		deviceH:     handler.NewDeviceHandler(users, tokens, logger.With("component", "device")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthCheck)

	// Webhook ingress (signature checked upstream)
	mux.HandleFunc("POST /webhooks/stripe", s.webhookH.HandleStripeEvent)

	// Account linking is the only route worth rate-limiting: it fans out to
	// the Stripe API.
	linkLimit := middleware.RateLimit(s.rateLimiter, middleware.RealIP, 10, time.Minute)
	mux.Handle("POST /users", linkLimit(http.HandlerFunc(s.userH.Link)))

	mux.HandleFunc("GET /users/{uid}", s.userH.Get)
	mux.HandleFunc("PUT /users/{uid}/preferences", s.userH.UpdatePreferences)
	mux.HandleFunc("POST /users/{uid}/devices", s.deviceH.Register)
	mux.HandleFunc("DELETE /users/{uid}/devices/{token}", s.deviceH.Unregister)

	return middleware.RequestLogger(s.logger)(mux)
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
