// Package workspace keeps the per-session state: the settings store and the
// mailbox of whoever is logged in on that session.
package workspace

import (
	"sync"
	"time"

	"klar/mailbox"
	"klar/settings"
	"klar/utils"
)

// Workspace is the state owned by one browser session or API token
type Workspace struct {
	ID       string
	Settings *settings.Store
	Mailbox  *mailbox.Mailbox

	mu sync.Mutex
}

// Account returns the email of the active account
func (w *Workspace) Account() string {
	return w.Settings.ActiveAccount()
}

// Manager hands out workspaces keyed by session id or token id. Idle
// workspaces expire after the configured TTL.
type Manager struct {
	cache       *utils.MemoryCache[*Workspace]
	persistence settings.Persistence
	tiers       settings.TierLookup
	log         *utils.Logger
}

// NewManager creates a manager whose workspaces live for ttl after their
// last use
func NewManager(persistence settings.Persistence, tiers settings.TierLookup, ttl time.Duration, log *utils.Logger) *Manager {
	cleanupEvery := ttl / 4
	if cleanupEvery < time.Second {
		cleanupEvery = time.Second
	}
	return &Manager{
		cache:       utils.NewMemoryCache[*Workspace](ttl, cleanupEvery),
		persistence: persistence,
		tiers:       tiers,
		log:         log,
	}
}

// Open returns the workspace for id, creating it when missing, and makes
// email its active account. Switching to another account starts a fresh
// mailbox.
func (m *Manager) Open(id, email string) *Workspace {
	ws := m.cache.GetOrSet(id, func() *Workspace {
		m.log.Debug("Creating workspace %s", id)
		return &Workspace{
			ID:       id,
			Settings: settings.NewStore(m.persistence, m.tiers, m.log),
			Mailbox:  mailbox.NewSeeded(),
		}
	})

	ws.mu.Lock()
	defer ws.mu.Unlock()

	current := ws.Settings.ActiveAccount()
	if current == email {
		return ws
	}
	if current != "" {
		ws.Mailbox.Reset(mailbox.SeedEmails())
	}
	ws.Settings.SetActiveAccount(email)
	m.log.WithField("workspace", id).Info("Active account set to %s", email)
	return ws
}

// Get returns the workspace for id if it is still alive
func (m *Manager) Get(id string) (*Workspace, bool) {
	return m.cache.Get(id)
}

// Close drops the workspace for id
func (m *Manager) Close(id string) {
	m.cache.Delete(id)
}

// Len is the number of live workspaces
func (m *Manager) Len() int {
	return m.cache.Size()
}

// Shutdown stops the expiry loop
func (m *Manager) Shutdown() {
	m.cache.Close()
}
