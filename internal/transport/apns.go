package transport

import (
	"context"
	"fmt"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/certificate"
	"github.com/sideshow/apns2/payload"

	"github.com/azcoov/push/internal/model"
)

// APNsConfig configures the certificate-based APNs transport.
type APNsConfig struct {
	CertificatePath     string
	CertificatePassword string
	Topic               string
	Production          bool
}

// APNs delivers alerts over the Apple Push Notification service using a
// provider certificate. Device tokens are the hex token strings handed out
// by iOS.
type APNs struct {
	client *apns2.Client
	topic  string
}

// NewAPNs loads the .p12 provider certificate and builds the client.
func NewAPNs(cfg APNsConfig) (*APNs, error) {
	cert, err := certificate.FromP12File(cfg.CertificatePath, cfg.CertificatePassword)
	if err != nil {
		return nil, fmt.Errorf("load apns certificate: %w", err)
	}

	client := apns2.NewClient(cert)
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNs{client: client, topic: cfg.Topic}, nil
}

// Push sends one alert to one device token.
func (t *APNs) Push(ctx context.Context, token string, alert model.Alert) error {
	p := payload.NewPayload().Alert(alert.Message)
	for k, v := range alert.Custom {
		p = p.Custom(k, v)
	}

	res, err := t.client.PushWithContext(ctx, &apns2.Notification{
		DeviceToken: token,
		Topic:       t.topic,
		Payload:     p,
	})
	if err != nil {
		return fmt.Errorf("apns push: %w", err)
	}
	if res.Sent() {
		return nil
	}

	switch res.Reason {
	case apns2.ReasonUnregistered, apns2.ReasonBadDeviceToken, apns2.ReasonDeviceTokenNotForTopic:
		return ErrTokenInvalid
	}
	return fmt.Errorf("apns rejected push: %s (status %d)", res.Reason, res.StatusCode)
}

var _ Transport = (*APNs)(nil)
