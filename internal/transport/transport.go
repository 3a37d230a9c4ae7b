// Package transport delivers alerts to individual device tokens.
package transport

import (
	"context"
	"errors"

	"github.com/azcoov/push/internal/model"
)

// ErrTokenInvalid is returned when a device token is permanently
// undeliverable and should be removed from the user's token set.
var ErrTokenInvalid = errors.New("device token no longer valid")

// Transport pushes one alert to one device token. Each call has an
// independent outcome; callers own fan-out and error containment.
type Transport interface {
	Push(ctx context.Context, token string, alert model.Alert) error
}
