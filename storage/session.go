package storage

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DefaultSessionPrefix namespaces session records in the KV store
const DefaultSessionPrefix = "klar_session_"

var _ fiber.Storage = (*SessionStorage)(nil)

type sessionRecord struct {
	Value     []byte    `json:"value"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// SessionStorage backs fiber's session middleware with a KV
type SessionStorage struct {
	kv     KV
	prefix string
	now    func() time.Time
}

// NewSessionStorage creates a session storage over kv
func NewSessionStorage(kv KV) *SessionStorage {
	return &SessionStorage{kv: kv, prefix: DefaultSessionPrefix, now: time.Now}
}

// Get returns the session data, or nil when missing or expired
func (s *SessionStorage) Get(key string) ([]byte, error) {
	data, ok, err := s.kv.Get(s.prefix + key)
	if err != nil || !ok {
		return nil, err
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		// Unreadable sessions are dropped; the client logs in again
		return nil, s.kv.Delete(s.prefix + key)
	}
	if !rec.ExpiresAt.IsZero() && s.now().After(rec.ExpiresAt) {
		return nil, s.kv.Delete(s.prefix + key)
	}
	return rec.Value, nil
}

// Set stores the session data. A zero exp means no expiration.
func (s *SessionStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}

	rec := sessionRecord{Value: val}
	if exp > 0 {
		rec.ExpiresAt = s.now().Add(exp)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.kv.Put(s.prefix+key, data)
}

// Delete removes a session
func (s *SessionStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	return s.kv.Delete(s.prefix + key)
}

// Reset removes every session
func (s *SessionStorage) Reset() error {
	keys, err := s.kv.Keys(s.prefix)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := s.kv.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// Close does not close the shared KV; its owner does
func (s *SessionStorage) Close() error {
	return nil
}
