package model

import "time"

// Threshold sentinel values carried on the charge_notifications and
// transfer_notifications fields.
const (
	// NotificationsDisabled turns a notification category off entirely.
	NotificationsDisabled = -1
	// NotificationsEvery sends one alert per event, no batching.
	NotificationsEvery = 0
)

// User is a linked Stripe account with its registered devices and
// notification settings. The JSON form is the public API representation:
// keys, the charge accumulator, and device tokens are never serialized.
type User struct {
	ID                    int64     `json:"-"`
	UID                   string    `json:"uid"`
	Email                 string    `json:"email"`
	PublishableKey        string    `json:"-"`
	SecretKey             string    `json:"-"`
	ChargeNotifications   int64     `json:"charge_notifications"`
	ChargeAmount          int64     `json:"-"`
	TransferNotifications int64     `json:"transfer_notifications"`
	CreatedAt             time.Time `json:"-"`
	UpdatedAt             time.Time `json:"-"`
}

// DeviceToken is one opaque push destination registered by a user's device.
type DeviceToken struct {
	ID        int64     `json:"-"`
	UserID    int64     `json:"-"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// Alert is the unit handed to the push transport: a human-readable message
// plus a structured custom payload.
type Alert struct {
	Message string
	Custom  map[string]any
}
