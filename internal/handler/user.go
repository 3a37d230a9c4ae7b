package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/azcoov/push/internal/store"
	"github.com/azcoov/push/internal/stripeapi"
)

type UserHandler struct {
	users  *store.UserStore
	lookup stripeapi.AccountLookup
	logger *slog.Logger
}

func NewUserHandler(us *store.UserStore, lookup stripeapi.AccountLookup, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: us, lookup: lookup, logger: logger}
}

type linkRequest struct {
	UID            string `json:"uid"`
	SecretKey      string `json:"secret_key"`
	PublishableKey string `json:"publishable_key"`
}

// Link handles POST /users: the account-linking step after OAuth. The account
// email is fetched before anything is written, so a lookup failure leaves no
// partial user behind.
func (h *UserHandler) Link(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.UID == "" || req.SecretKey == "" || req.PublishableKey == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "uid, secret_key, and publishable_key are required"})
		return
	}

	account, err := h.lookup.RetrieveAccount(r.Context(), req.SecretKey)
	if err != nil {
		h.logger.Error("account lookup failed", "uid", req.UID, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "account lookup failed"})
		return
	}

	user, err := h.users.Upsert(req.UID, account.Email, req.PublishableKey, req.SecretKey)
	if err != nil {
		h.logger.Error("save user", "uid", req.UID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save user"})
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Get handles GET /users/{uid}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByUID(r.PathValue("uid"))
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load user"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type preferencesRequest struct {
	ChargeNotifications   *int64 `json:"charge_notifications"`
	TransferNotifications *int64 `json:"transfer_notifications"`
}

// UpdatePreferences handles PUT /users/{uid}/preferences. Omitted fields keep
// their current value; the integer sentinel encoding (-1 disabled, 0 every
// event, >0 batch threshold) is the wire contract.
func (h *UserHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	uid := r.PathValue("uid")

	user, err := h.users.GetByUID(uid)
	if err != nil {
		h.logger.Error("get user", "uid", uid, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load user"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}

	var req preferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	charge := user.ChargeNotifications
	if req.ChargeNotifications != nil {
		charge = *req.ChargeNotifications
	}
	transfer := user.TransferNotifications
	if req.TransferNotifications != nil {
		transfer = *req.TransferNotifications
	}

	if err := h.users.UpdatePreferences(uid, charge, transfer); err != nil {
		h.logger.Error("update preferences", "uid", uid, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update preferences"})
		return
	}

	updated, err := h.users.GetByUID(uid)
	if err != nil || updated == nil {
		h.logger.Error("reload user", "uid", uid, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load user"})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
