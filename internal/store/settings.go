package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/taskpro/taskpro/internal/models"
)

const settingsKey = "settings"

// DefaultSettings returns the settings bundle used before an admin has
// saved anything.
func DefaultSettings() models.Settings {
	return models.Settings{
		SiteName:             "TaskPro",
		RegistrationEnabled:  true,
		NotificationsEnabled: true,
		BackupFrequency:      "daily",
	}
}

// GetSettings reads the admin settings bundle, falling back to defaults
// when never saved.
func (s *Store) GetSettings() (models.Settings, error) {
	var settings models.Settings
	err := s.GetAppValue(settingsKey, &settings)
	if errors.Is(err, ErrNotFound) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return models.Settings{}, err
	}
	return settings, nil
}

// SaveSettings persists the admin settings bundle.
func (s *Store) SaveSettings(settings models.Settings) error {
	return s.SetAppValue(settingsKey, settings)
}

// GetAppValue reads a JSON value from the app_settings table into out.
// Returns ErrNotFound when the key has never been set.
func (s *Store) GetAppValue(key string, out any) error {
	var value string
	err := s.conn.QueryRow(`SELECT value FROM app_settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return fmt.Errorf("app setting %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		return fmt.Errorf("parse app setting %s: %w", key, err)
	}
	return nil
}

// SetAppValue stores a value as JSON in the app_settings table.
func (s *Store) SetAppValue(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal app setting %s: %w", key, err)
	}
	return s.withWriteLock(func() error {
		_, err := s.conn.Exec(`INSERT OR REPLACE INTO app_settings (key, value) VALUES (?, ?)`,
			key, string(data))
		return err
	})
}

// DeleteAppValue removes a key from the app_settings table.
func (s *Store) DeleteAppValue(key string) error {
	return s.withWriteLock(func() error {
		_, err := s.conn.Exec(`DELETE FROM app_settings WHERE key = ?`, key)
		return err
	})
}
