package transport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/azcoov/push/internal/model"
)

// WebPushConfig configures the VAPID web push transport.
type WebPushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string
	TTL             int
}

// webPushSubscription is the decoded form of a web push device token.
type webPushSubscription struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

// EncodeWebPushToken packs a browser push subscription into the opaque
// device-token string the relay stores. Clients register the result like any
// other token.
func EncodeWebPushToken(endpoint, p256dh, auth string) string {
	raw, _ := json.Marshal(webPushSubscription{Endpoint: endpoint, P256dh: p256dh, Auth: auth})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// WebPush delivers alerts over the Web Push protocol. Device tokens are
// base64-encoded subscription blobs produced by EncodeWebPushToken.
type WebPush struct {
	cfg WebPushConfig
}

// NewWebPush builds the transport. TTL defaults to one day.
func NewWebPush(cfg WebPushConfig) *WebPush {
	if cfg.TTL <= 0 {
		cfg.TTL = 86400
	}
	if cfg.Subscriber == "" {
		cfg.Subscriber = "mailto:noreply@localhost"
	}
	return &WebPush{cfg: cfg}
}

type webPushMessage struct {
	Alert  string         `json:"alert"`
	Custom map[string]any `json:"custom,omitempty"`
}

// Push sends one alert to one encoded subscription token.
func (t *WebPush) Push(ctx context.Context, token string, alert model.Alert) error {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return fmt.Errorf("%w: not base64", ErrTokenInvalid)
	}

	var sub webPushSubscription
	if err := json.Unmarshal(raw, &sub); err != nil || sub.Endpoint == "" {
		return fmt.Errorf("%w: not a web push subscription", ErrTokenInvalid)
	}

	body, err := json.Marshal(webPushMessage{Alert: alert.Message, Custom: alert.Custom})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		VAPIDPublicKey:  t.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: t.cfg.VAPIDPrivateKey,
		Subscriber:      t.cfg.Subscriber,
		TTL:             t.cfg.TTL,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusGone, resp.StatusCode == http.StatusNotFound:
		return ErrTokenInvalid
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}
	return nil
}

var _ Transport = (*WebPush)(nil)
