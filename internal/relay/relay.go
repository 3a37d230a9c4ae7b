// Package relay routes inbound payment events to a user's devices.
package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/azcoov/push/internal/dispatch"
	"github.com/azcoov/push/internal/model"
	"github.com/azcoov/push/internal/notify"
	"github.com/azcoov/push/internal/store"
)

// Service is the event router and per-user serialization point. Each inbound
// event is processed end to end: decode, decide, persist, fan out.
type Service struct {
	users      *store.UserStore
	tokens     *store.DeviceTokenStore
	dispatcher *dispatch.Dispatcher
	money      notify.MoneyFormatter
	logger     *slog.Logger

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

func New(users *store.UserStore, tokens *store.DeviceTokenStore, dispatcher *dispatch.Dispatcher, money notify.MoneyFormatter, logger *slog.Logger) *Service {
	return &Service{
		users:      users,
		tokens:     tokens,
		dispatcher: dispatcher,
		money:      money,
		logger:     logger,
		userLocks:  make(map[string]*sync.Mutex),
	}
}

// userLock returns the serialization lock for a uid. The accumulator
// read-modify-write is order-sensitive, so charge events for one user must
// not interleave; events for different users proceed in parallel.
func (s *Service) userLock(uid string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.userLocks[uid]
	if !ok {
		l = &sync.Mutex{}
		s.userLocks[uid] = l
	}
	return l
}

// HandleEvent dispatches one webhook event by type. Unknown types are ignored
// on purpose and are never an error.
func (s *Service) HandleEvent(ctx context.Context, event stripe.Event) {
	switch event.Type {
	case "charge.succeeded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			s.logger.Error("unmarshal charge", "event_id", event.ID, "error", err)
			return
		}
		s.handleCharge(ctx, event.Account, notify.Charge{
			Amount:      charge.Amount,
			Currency:    string(charge.Currency),
			Description: charge.Description,
		})

	case "transfer.created", "transfer.updated":
		var transfer stripe.Transfer
		if err := json.Unmarshal(event.Data.Raw, &transfer); err != nil {
			s.logger.Error("unmarshal transfer", "event_id", event.ID, "error", err)
			return
		}
		s.handleTransfer(ctx, event.Account, notify.Transfer{
			Amount:      transfer.Amount,
			Currency:    string(transfer.Currency),
			Description: transfer.Description,
		})
	}
}

func (s *Service) handleCharge(ctx context.Context, uid string, charge notify.Charge) {
	if uid == "" {
		s.logger.Warn("charge event without account id")
		return
	}

	alert, userID, sendTokens, ok := s.decideCharge(uid, charge)
	if !ok {
		return
	}

	s.dispatcher.Dispatch(ctx, userID, alert, sendTokens)
}

// decideCharge runs the locked decide-then-persist step and snapshots the
// token set. Dispatch happens outside the lock so slow deliveries never stall
// the next event for the same user.
func (s *Service) decideCharge(uid string, charge notify.Charge) (model.Alert, int64, []string, bool) {
	lock := s.userLock(uid)
	lock.Lock()
	defer lock.Unlock()

	user, err := s.users.GetByUID(uid)
	if err != nil {
		s.logger.Error("load user", "uid", uid, "error", err)
		return model.Alert{}, 0, nil, false
	}
	if user == nil {
		s.logger.Warn("charge for unknown account", "uid", uid)
		return model.Alert{}, 0, nil, false
	}

	pref := notify.Preference{
		ChargeThreshold:   user.ChargeNotifications,
		TransferThreshold: user.TransferNotifications,
		AccumulatedCharge: user.ChargeAmount,
	}

	action, next := notify.Decide(pref, charge)

	if next.AccumulatedCharge != pref.AccumulatedCharge {
		// Best effort on the notification path: a failed save is logged,
		// never fatal to the event.
		if err := s.users.UpdateChargeAmount(uid, next.AccumulatedCharge); err != nil {
			s.logger.Error("persist charge accumulator", "uid", uid, "error", err)
		}
	}

	alert, ok := notify.FormatAlert(action, s.money)
	if !ok {
		return model.Alert{}, 0, nil, false
	}

	tokens, err := s.tokens.ListByUser(user.ID)
	if err != nil {
		s.logger.Error("list device tokens", "uid", uid, "error", err)
		return model.Alert{}, 0, nil, false
	}

	return alert, user.ID, tokens, true
}

func (s *Service) handleTransfer(ctx context.Context, uid string, transfer notify.Transfer) {
	if uid == "" {
		s.logger.Warn("transfer event without account id")
		return
	}

	user, err := s.users.GetByUID(uid)
	if err != nil {
		s.logger.Error("load user", "uid", uid, "error", err)
		return
	}
	if user == nil {
		s.logger.Warn("transfer for unknown account", "uid", uid)
		return
	}

	pref := notify.Preference{
		ChargeThreshold:   user.ChargeNotifications,
		TransferThreshold: user.TransferNotifications,
		AccumulatedCharge: user.ChargeAmount,
	}

	action := notify.DecideTransfer(pref, transfer)
	alert, ok := notify.FormatAlert(action, s.money)
	if !ok {
		return
	}

	tokens, err := s.tokens.ListByUser(user.ID)
	if err != nil {
		s.logger.Error("list device tokens", "uid", uid, "error", err)
		return
	}

	s.dispatcher.Dispatch(ctx, user.ID, alert, tokens)
}
