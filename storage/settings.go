package storage

import (
	"encoding/json"
	"fmt"

	"klar/models"
	"klar/utils"
)

// DefaultSettingsPrefix namespaces settings records in the KV store
const DefaultSettingsPrefix = "klar_settings_"

// SettingsStorage persists one UserSettings record per account email
type SettingsStorage struct {
	kv     KV
	prefix string
	log    *utils.Logger
}

// NewSettingsStorage creates a settings storage over kv. An empty prefix
// uses DefaultSettingsPrefix.
func NewSettingsStorage(kv KV, prefix string, log *utils.Logger) *SettingsStorage {
	if prefix == "" {
		prefix = DefaultSettingsPrefix
	}
	if log == nil {
		log = utils.Log
	}
	return &SettingsStorage{kv: kv, prefix: prefix, log: log}
}

// Key returns the KV key of an account's settings
func (s *SettingsStorage) Key(email string) string {
	return s.prefix + email
}

// Load returns the persisted settings of email. A missing, unreadable or
// malformed record is reported as absent, never as an error.
func (s *SettingsStorage) Load(email string) (models.UserSettings, bool) {
	data, ok, err := s.kv.Get(s.Key(email))
	if err != nil {
		s.log.Warn("Failed to read settings for %s: %v", email, err)
		return models.UserSettings{}, false
	}
	if !ok {
		return models.UserSettings{}, false
	}

	var settings models.UserSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		s.log.Warn("Ignoring corrupt settings record for %s: %v", email, err)
		return models.UserSettings{}, false
	}
	if _, err := models.ParseTier(string(settings.AccountType)); err != nil {
		s.log.Warn("Ignoring settings record for %s: %v", email, err)
		return models.UserSettings{}, false
	}

	return settings, true
}

// Save persists the settings of email
func (s *SettingsStorage) Save(email string, settings models.UserSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := s.kv.Put(s.Key(email), data); err != nil {
		return fmt.Errorf("failed to save settings for %s: %w", email, err)
	}
	return nil
}

// Delete removes the settings of email
func (s *SettingsStorage) Delete(email string) error {
	return s.kv.Delete(s.Key(email))
}

// Accounts lists the emails that have a persisted record
func (s *SettingsStorage) Accounts() ([]string, error) {
	keys, err := s.kv.Keys(s.prefix)
	if err != nil {
		return nil, err
	}

	emails := make([]string, 0, len(keys))
	for _, k := range keys {
		emails = append(emails, k[len(s.prefix):])
	}
	return emails, nil
}
