package store

import (
	"database/sql"
	"fmt"

	"github.com/azcoov/push/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userCols = `id, uid, email, publishable_key, secret_key, charge_notifications, charge_amount, transfer_notifications, created_at, updated_at`

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(
		&u.ID, &u.UID, &u.Email, &u.PublishableKey, &u.SecretKey,
		&u.ChargeNotifications, &u.ChargeAmount, &u.TransferNotifications,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Upsert creates or relinks a user in one statement. Relinking replaces the
// keys and email but keeps notification settings and the charge accumulator.
func (s *UserStore) Upsert(uid, email, publishableKey, secretKey string) (*model.User, error) {
	_, err := s.db.Exec(
		`INSERT INTO users (uid, email, publishable_key, secret_key)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(uid) DO UPDATE SET
		     email = excluded.email,
		     publishable_key = excluded.publishable_key,
		     secret_key = excluded.secret_key,
		     updated_at = CURRENT_TIMESTAMP`,
		uid, email, publishableKey, secretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return s.GetByUID(uid)
}

func (s *UserStore) GetByUID(uid string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE uid = ?`, uid)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by uid: %w", err)
	}
	return u, nil
}

// UpdatePreferences sets the notification thresholds. Moving charge
// notifications to the disabled or every-event sentinel resets the
// accumulator so it is never carried into a non-batching mode.
func (s *UserStore) UpdatePreferences(uid string, chargeNotifications, transferNotifications int64) error {
	result, err := s.db.Exec(
		`UPDATE users SET
		     charge_notifications = ?,
		     transfer_notifications = ?,
		     charge_amount = CASE WHEN ? > 0 THEN charge_amount ELSE 0 END,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE uid = ?`,
		chargeNotifications, transferNotifications, chargeNotifications, uid,
	)
	if err != nil {
		return fmt.Errorf("update preferences: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update preferences: user %s not found", uid)
	}
	return nil
}

// UpdateChargeAmount persists the accumulator after a decision.
func (s *UserStore) UpdateChargeAmount(uid string, amount int64) error {
	_, err := s.db.Exec(
		`UPDATE users SET charge_amount = ?, updated_at = CURRENT_TIMESTAMP WHERE uid = ?`,
		amount, uid,
	)
	if err != nil {
		return fmt.Errorf("update charge amount: %w", err)
	}
	return nil
}

func (s *UserStore) Delete(uid string) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE uid = ?`, uid)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
