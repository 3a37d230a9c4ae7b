package notify

import "github.com/azcoov/push/internal/model"

// MoneyFormatter renders a minor-unit amount in a currency into its symbol
// and display string.
type MoneyFormatter interface {
	Format(amount int64, currency string) (symbol, display string)
}

// FormatAlert renders an emitting action into a push alert. The second return
// is false for None and Suppress actions, which produce no alert.
func FormatAlert(action Action, mf MoneyFormatter) (model.Alert, bool) {
	switch action.Kind {
	case ActionNotifyCharge:
		symbol, display := mf.Format(action.Amount, action.Currency)
		msg := "Paid " + symbol + display
		if action.Description != "" {
			msg += " - " + action.Description
		}
		msg += "."
		return model.Alert{
			Message: msg,
			Custom: map[string]any{
				"amount":      action.Amount,
				"description": action.Description,
			},
		}, true

	case ActionNotifyChargeBatch:
		symbol, display := mf.Format(action.Amount, action.Currency)
		return model.Alert{
			Message: "Paid " + symbol + display + ".",
			Custom: map[string]any{
				"amount": action.Amount,
				"batch":  true,
			},
		}, true

	case ActionNotifyTransfer:
		symbol, display := mf.Format(action.Amount, action.Currency)
		return model.Alert{
			Message: symbol + display + " is being transferred into your bank account.",
			Custom: map[string]any{
				"amount":      action.Amount,
				"description": action.Description,
			},
		}, true
	}

	return model.Alert{}, false
}
