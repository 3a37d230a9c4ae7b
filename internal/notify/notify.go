// Package notify decides whether and how payment events become push alerts.
//
// The decision engine is pure: it takes the user's current preference state
// and one event, and returns an action plus the next preference state. The
// caller owns persistence of the returned state and serialization of
// concurrent decisions for the same user.
package notify

// Preference is a user's notification settings together with the running
// charge accumulator. Threshold fields keep the integer wire encoding
// (-1 disabled, 0 every event, >0 batch threshold).
type Preference struct {
	ChargeThreshold   int64
	TransferThreshold int64
	AccumulatedCharge int64
}

// Charge is a successful charge event in minor currency units.
type Charge struct {
	Amount      int64
	Currency    string
	Description string
}

// Transfer is a bank transfer event in minor currency units.
type Transfer struct {
	Amount      int64
	Currency    string
	Description string
}

// ActionKind enumerates engine outcomes.
type ActionKind int

const (
	// ActionNone accumulates silently; nothing is sent.
	ActionNone ActionKind = iota
	// ActionSuppress drops the event because the category is disabled.
	ActionSuppress
	// ActionNotifyCharge sends an alert for a single charge.
	ActionNotifyCharge
	// ActionNotifyChargeBatch sends one alert for the accumulated total.
	ActionNotifyChargeBatch
	// ActionNotifyTransfer sends an alert for a single transfer.
	ActionNotifyTransfer
)

// Action is the engine's verdict for one event.
type Action struct {
	Kind        ActionKind
	Amount      int64
	Currency    string
	Description string
}

// Emits reports whether the action produces an alert.
func (a Action) Emits() bool {
	switch a.Kind {
	case ActionNotifyCharge, ActionNotifyChargeBatch, ActionNotifyTransfer:
		return true
	}
	return false
}

// Decide evaluates one charge against the user's preference and returns the
// action to take plus the next preference state. It never fails: disabled
// users suppress, every-event users alert immediately, and batching users
// accumulate until the running total reaches the threshold, at which point a
// batch alert for the full total is emitted and the accumulator resets.
func Decide(pref Preference, charge Charge) (Action, Preference) {
	policy := DecodeChargePolicy(pref.ChargeThreshold)

	switch policy.Mode {
	case ChargeDisabled:
		return Action{Kind: ActionSuppress}, pref
	case ChargeEveryEvent:
		return Action{
			Kind:        ActionNotifyCharge,
			Amount:      charge.Amount,
			Currency:    charge.Currency,
			Description: charge.Description,
		}, pref
	}

	next := pref
	next.AccumulatedCharge += charge.Amount

	if next.AccumulatedCharge >= policy.Threshold {
		total := next.AccumulatedCharge
		next.AccumulatedCharge = 0
		return Action{
			Kind:     ActionNotifyChargeBatch,
			Amount:   total,
			Currency: charge.Currency,
		}, next
	}

	return Action{Kind: ActionNone}, next
}

// DecideTransfer evaluates one transfer. Transfers are never batched: every
// qualifying event produces one alert, and the charge accumulator is never
// touched.
func DecideTransfer(pref Preference, transfer Transfer) Action {
	if !TransferEnabled(pref.TransferThreshold) {
		return Action{Kind: ActionSuppress}
	}
	return Action{
		Kind:        ActionNotifyTransfer,
		Amount:      transfer.Amount,
		Currency:    transfer.Currency,
		Description: transfer.Description,
	}
}
