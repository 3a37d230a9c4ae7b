// Package dispatch fans one alert out to every device token of a user.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/azcoov/push/internal/model"
	"github.com/azcoov/push/internal/transport"
)

// RemoveTokenFunc drops a permanently undeliverable token from storage.
type RemoveTokenFunc func(userID int64, token string) error

// Config tunes fan-out concurrency and per-token delivery timeout.
type Config struct {
	Workers int
	Timeout time.Duration
}

// Dispatcher delivers alerts to token sets. Delivery is fire-and-forget per
// token: one token's failure is logged and never aborts the others, and
// failed deliveries are not retried.
type Dispatcher struct {
	transport   transport.Transport
	removeToken RemoveTokenFunc
	workers     int
	timeout     time.Duration
	logger      *slog.Logger
}

// New creates a dispatcher. removeToken may be nil when token cleanup is not
// wanted (tests).
func New(t transport.Transport, cfg Config, removeToken RemoveTokenFunc, logger *slog.Logger) *Dispatcher {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Dispatcher{
		transport:   t,
		removeToken: removeToken,
		workers:     cfg.Workers,
		timeout:     cfg.Timeout,
		logger:      logger,
	}
}

// Dispatch sends the alert to every token. An empty token set is a no-op.
// Blocks until every delivery attempt has finished.
func (d *Dispatcher) Dispatch(ctx context.Context, userID int64, alert model.Alert, tokens []string) {
	if len(tokens) == 0 {
		return
	}

	g := new(errgroup.Group)
	g.SetLimit(d.workers)

	for _, token := range tokens {
		g.Go(func() error {
			pushCtx, cancel := context.WithTimeout(ctx, d.timeout)
			defer cancel()

			err := d.transport.Push(pushCtx, token, alert)
			switch {
			case err == nil:
			case errors.Is(err, transport.ErrTokenInvalid):
				d.logger.Info("removing invalid device token", "user_id", userID)
				if d.removeToken != nil {
					if rerr := d.removeToken(userID, token); rerr != nil {
						d.logger.Error("remove device token", "user_id", userID, "error", rerr)
					}
				}
			default:
				d.logger.Error("push delivery failed", "user_id", userID, "error", err)
			}
			return nil
		})
	}

	// Workers never return errors; failures are contained above.
	_ = g.Wait()
}
