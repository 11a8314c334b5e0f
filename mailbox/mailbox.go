// Package mailbox holds a mailbox's email collection, its folder views and
// the actions that move emails between them.
package mailbox

import (
	"errors"
	"fmt"
	"sync"

	"klar/models"
)

// ErrEmailNotFound is returned for ids that are not in the collection
var ErrEmailNotFound = errors.New("email not found")

// Mailbox owns an email collection and the currently opened email
type Mailbox struct {
	mu       sync.RWMutex
	emails   []models.Email
	selected int // 0 = nothing opened; ids start at 1
}

// New creates a mailbox over a copy of emails
func New(emails []models.Email) *Mailbox {
	return &Mailbox{emails: append([]models.Email(nil), emails...)}
}

// NewSeeded creates a mailbox holding the mock emails
func NewSeeded() *Mailbox {
	return New(SeedEmails())
}

// Emails returns a copy of the whole collection
func (m *Mailbox) Emails() []models.Email {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]models.Email(nil), m.emails...)
}

// Get returns the email with the given id
func (m *Mailbox) Get(id int) (models.Email, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.index(id)
	if i < 0 {
		return models.Email{}, fmt.Errorf("%w: %d", ErrEmailNotFound, id)
	}
	return m.emails[i], nil
}

// List returns the emails visible in view v for the search query
func (m *Mailbox) List(v models.View, query string) []models.Email {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Filter(m.emails, v, query)
}

// Counters returns the sidebar counters
func (m *Mailbox) Counters() models.Counters {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Count(m.emails)
}

// ToggleStar flips the starred flag
func (m *Mailbox) ToggleStar(id int) (models.Email, error) {
	return m.update(id, false, func(e *models.Email) { e.IsStarred = !e.IsStarred })
}

// MarkAsRead marks the email read. Calling it again changes nothing.
func (m *Mailbox) MarkAsRead(id int) (models.Email, error) {
	return m.update(id, false, func(e *models.Email) { e.IsRead = true })
}

// Archive moves the email to the archive and closes it if it was open
func (m *Mailbox) Archive(id int) (models.Email, error) {
	return m.update(id, true, func(e *models.Email) { e.IsArchived = true })
}

// MoveToTrash moves the email to the trash and closes it if it was open.
// The archived flag is kept; the trash view wins over the archive.
func (m *Mailbox) MoveToTrash(id int) (models.Email, error) {
	return m.update(id, true, func(e *models.Email) { e.IsDeleted = true })
}

// Restore takes the email out of the trash. It always lands in the inbox,
// even if it was archived before being trashed.
func (m *Mailbox) Restore(id int) (models.Email, error) {
	return m.update(id, false, func(e *models.Email) {
		e.IsDeleted = false
		e.IsArchived = false
	})
}

// Delete removes the email from the collection for good
func (m *Mailbox) Delete(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrEmailNotFound, id)
	}

	m.emails = append(m.emails[:i], m.emails[i+1:]...)
	if m.selected == id {
		m.selected = 0
	}
	return nil
}

// Open selects the email and marks it read
func (m *Mailbox) Open(id int) (models.Email, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return models.Email{}, fmt.Errorf("%w: %d", ErrEmailNotFound, id)
	}

	m.emails[i].IsRead = true
	m.selected = id
	return m.emails[i], nil
}

// Selected returns the opened email, if any
func (m *Mailbox) Selected() (models.Email, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.selected == 0 {
		return models.Email{}, false
	}
	i := m.index(m.selected)
	if i < 0 {
		return models.Email{}, false
	}
	return m.emails[i], true
}

// Reset replaces the collection with a copy of emails and closes the
// opened email
func (m *Mailbox) Reset(emails []models.Email) {
	m.mu.Lock()
	m.emails = append([]models.Email(nil), emails...)
	m.selected = 0
	m.mu.Unlock()
}

// ClearSelection closes the opened email
func (m *Mailbox) ClearSelection() {
	m.mu.Lock()
	m.selected = 0
	m.mu.Unlock()
}

func (m *Mailbox) update(id int, deselect bool, fn func(*models.Email)) (models.Email, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return models.Email{}, fmt.Errorf("%w: %d", ErrEmailNotFound, id)
	}

	fn(&m.emails[i])
	if deselect && m.selected == id {
		m.selected = 0
	}
	return m.emails[i], nil
}

// index must be called with the lock held
func (m *Mailbox) index(id int) int {
	for i := range m.emails {
		if m.emails[i].ID == id {
			return i
		}
	}
	return -1
}
