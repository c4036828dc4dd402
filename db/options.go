// ABOUTME: Options database operations
// ABOUTME: Stores admin-configurable notification settings as JSON with default fallback
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/whitefoxstudios/onboarding/models"
)

const notificationOption = "onboarding_notification"

// OptionsRepository reads and writes named JSON options.
type OptionsRepository struct {
	db       *sql.DB
	defaults models.NotificationSettings
}

// NewOptionsRepository creates an options repository. Empty stored settings fall back to defaults.
func NewOptionsRepository(db *sql.DB, defaults models.NotificationSettings) *OptionsRepository {
	return &OptionsRepository{db: db, defaults: defaults}
}

// NotificationSettings returns the stored settings merged over the defaults.
func (r *OptionsRepository) NotificationSettings(ctx context.Context) (models.NotificationSettings, error) {
	stored, err := r.StoredNotificationSettings(ctx)
	if err != nil {
		return models.NotificationSettings{}, err
	}
	return stored.WithDefaults(r.defaults), nil
}

// StoredNotificationSettings returns exactly what is stored, empty when nothing is.
func (r *OptionsRepository) StoredNotificationSettings(ctx context.Context) (models.NotificationSettings, error) {
	var stored models.NotificationSettings

	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM options WHERE name = ?`, notificationOption).Scan(&raw)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return stored, fmt.Errorf("failed to read notification settings: %w", err)
	default:
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			return stored, fmt.Errorf("failed to decode notification settings: %w", err)
		}
	}
	return stored, nil
}

// SaveNotificationSettings replaces the stored settings.
func (r *OptionsRepository) SaveNotificationSettings(ctx context.Context, s models.NotificationSettings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO options (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, notificationOption, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save notification settings: %w", err)
	}
	return nil
}
