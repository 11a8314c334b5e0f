// Package settings holds the account-scoped settings store: the settings of
// the active account, loaded when the account changes and persisted on
// every update.
package settings

import (
	"sync"

	"klar/models"
	"klar/utils"
)

// Persistence is where settings records are loaded from and saved to.
// *storage.SettingsStorage implements it.
type Persistence interface {
	Load(email string) (models.UserSettings, bool)
	Save(email string, settings models.UserSettings) error
}

// TierLookup resolves the tier of an account email
type TierLookup interface {
	TierOf(email string) models.AccountTier
}

// Store holds the in-memory settings of the active account
type Store struct {
	persistence Persistence
	tiers       TierLookup
	log         *utils.Logger

	mu       sync.RWMutex
	active   string
	settings models.UserSettings
}

// NewStore creates a store with no active account
func NewStore(persistence Persistence, tiers TierLookup, log *utils.Logger) *Store {
	if log == nil {
		log = utils.Log
	}
	return &Store{
		persistence: persistence,
		tiers:       tiers,
		log:         log,
	}
}

// LoadSettings returns the persisted settings of email, or the defaults of
// its tier when nothing (readable) is persisted.
func (s *Store) LoadSettings(email string) models.UserSettings {
	if saved, ok := s.persistence.Load(email); ok {
		return saved
	}
	return models.DefaultsFor(s.tiers.TierOf(email))
}

// SetActiveAccount makes email the active account and replaces the
// in-memory settings with its loaded settings, which are persisted right
// away so a first login materializes the tier defaults.
func (s *Store) SetActiveAccount(email string) {
	loaded := s.LoadSettings(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = email
	s.settings = loaded
	s.persist()
}

// UpdateSettings merges patch into the active settings and persists the
// result before returning it.
func (s *Store) UpdateSettings(patch models.SettingsPatch) models.UserSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = patch.Apply(s.settings)
	s.persist()

	return s.settings
}

// Settings returns a copy of the active settings
func (s *Store) Settings() models.UserSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.settings
}

// ActiveAccount returns the email of the active account, "" before the
// first SetActiveAccount
func (s *Store) ActiveAccount() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.active
}

// persist saves the in-memory record under the active account. Failures
// are logged: the in-memory record stays authoritative for this session.
// Must be called with the lock held.
func (s *Store) persist() {
	if s.active == "" {
		return
	}
	if err := s.persistence.Save(s.active, s.settings); err != nil {
		s.log.Error("Failed to persist settings for %s: %v", s.active, err)
	}
}
