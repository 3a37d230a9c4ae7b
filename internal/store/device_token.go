package store

import (
	"database/sql"
	"fmt"
)

// DeviceTokenStore is the per-user set of push destinations. Add and Remove
// are idempotent: re-adding an existing token or removing an absent one is a
// no-op, never an error.
type DeviceTokenStore struct {
	db *sql.DB
}

func NewDeviceTokenStore(db *sql.DB) *DeviceTokenStore {
	return &DeviceTokenStore{db: db}
}

func (s *DeviceTokenStore) Add(userID int64, token string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO device_tokens (user_id, token) VALUES (?, ?)`,
		userID, token,
	)
	if err != nil {
		return fmt.Errorf("add device token: %w", err)
	}
	return nil
}

func (s *DeviceTokenStore) Remove(userID int64, token string) error {
	_, err := s.db.Exec(
		`DELETE FROM device_tokens WHERE user_id = ? AND token = ?`,
		userID, token,
	)
	if err != nil {
		return fmt.Errorf("remove device token: %w", err)
	}
	return nil
}

// ListByUser returns the user's tokens. Order is not meaningful to callers;
// created_at is used only to keep results stable.
func (s *DeviceTokenStore) ListByUser(userID int64) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT token FROM device_tokens WHERE user_id = ? ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("scan device token: %w", err)
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}
