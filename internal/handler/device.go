package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/azcoov/push/internal/store"
)

type DeviceHandler struct {
	users  *store.UserStore
	tokens *store.DeviceTokenStore
	logger *slog.Logger
}

func NewDeviceHandler(us *store.UserStore, ts *store.DeviceTokenStore, logger *slog.Logger) *DeviceHandler {
	return &DeviceHandler{users: us, tokens: ts, logger: logger}
}

type registerRequest struct {
	Token string `json:"token"`
}

// Register handles POST /users/{uid}/devices. Re-registering a token is a
// no-op.
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
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

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "token is required"})
		return
	}

	if err := h.tokens.Add(user.ID, req.Token); err != nil {
		h.logger.Error("add device token", "uid", uid, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to register device"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"token": req.Token})
}

// Unregister handles DELETE /users/{uid}/devices/{token}. Removing an
// unknown token still succeeds.
func (h *DeviceHandler) Unregister(w http.ResponseWriter, r *http.Request) {
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

	if err := h.tokens.Remove(user.ID, r.PathValue("token")); err != nil {
		h.logger.Error("remove device token", "uid", uid, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to unregister device"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
