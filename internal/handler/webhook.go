package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/azcoov/push/internal/relay"
)

type WebhookHandler struct {
	relay  *relay.Service
	logger *slog.Logger
}

func NewWebhookHandler(r *relay.Service, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{relay: r, logger: logger}
}

// HandleStripeEvent handles POST /webhooks/stripe. Signature verification is
// the edge proxy's job; this endpoint trusts its upstream.
func (h *WebhookHandler) HandleStripeEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 65536))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	var event stripe.Event
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Warn("malformed webhook payload", "error", err)
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	h.relay.HandleEvent(r.Context(), event)
	w.WriteHeader(http.StatusOK)
}
