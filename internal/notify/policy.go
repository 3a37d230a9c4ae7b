package notify

import "github.com/azcoov/push/internal/model"

// ChargeMode is the decoded behavior of the charge_notifications field.
type ChargeMode int

const (
	// ChargeDisabled suppresses all charge alerts.
	ChargeDisabled ChargeMode = iota
	// ChargeEveryEvent sends one alert per charge, no accumulation.
	ChargeEveryEvent
	// ChargeBatch accumulates charges and alerts once the running total
	// reaches the threshold.
	ChargeBatch
)

// ChargePolicy is the internal, tagged form of the integer-encoded charge
// notification setting. The wire format keeps the original encoding:
// -1 disabled, 0 every event, >0 batch threshold in minor units.
type ChargePolicy struct {
	Mode      ChargeMode
	Threshold int64
}

// DecodeChargePolicy maps the wire integer onto a tagged policy. Any negative
// value is treated as disabled.
func DecodeChargePolicy(v int64) ChargePolicy {
	switch {
	case v < 0:
		return ChargePolicy{Mode: ChargeDisabled}
	case v == 0:
		return ChargePolicy{Mode: ChargeEveryEvent}
	default:
		return ChargePolicy{Mode: ChargeBatch, Threshold: v}
	}
}

// Encode returns the wire integer for the policy.
func (p ChargePolicy) Encode() int64 {
	switch p.Mode {
	case ChargeDisabled:
		return model.NotificationsDisabled
	case ChargeEveryEvent:
		return model.NotificationsEvery
	default:
		return p.Threshold
	}
}

// TransferEnabled reports whether the transfer_notifications setting allows
// alerts. Transfers are never batched, so only the disabled sentinel matters.
func TransferEnabled(v int64) bool {
	return v != model.NotificationsDisabled
}
