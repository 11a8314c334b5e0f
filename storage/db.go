package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const kvBucket = "kv"

// BoltKV stores every key in a single bbolt bucket
type BoltKV struct {
	db *bbolt.DB
}

// NewBoltKV opens (or creates) <dataDir>/klar.db
func NewBoltKV(dataDir string) (*BoltKV, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "klar.db")

	// Open the database
	// It will be created if it doesn't exist.
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(kvBucket)); err != nil {
			return fmt.Errorf("create bucket %s: %w", kvBucket, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltKV{db: db}, nil
}

// Get returns a copy of the value stored under key
func (s *BoltKV) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(kvBucket)).Get([]byte(key))
		if data != nil {
			// bbolt memory is only valid inside the transaction
			value = append([]byte(nil), data...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, value != nil, nil
}

// Put stores value under key
func (s *BoltKV) Put(key string, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(kvBucket)).Put([]byte(key), value)
	})
}

// Delete removes key. Deleting a missing key is not an error.
func (s *BoltKV) Delete(key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(kvBucket)).Delete([]byte(key))
	})
}

// Keys lists the keys starting with prefix, in byte order
func (s *BoltKV) Keys(prefix string) ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(kvBucket)).Cursor()

		p := []byte(prefix)
		for k, _ := c.Seek(p); k != nil && bytesHasPrefix(k, p); k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Close closes the database connection
func (s *BoltKV) Close() error {
	return s.db.Close()
}

// Helper for prefix check
func bytesHasPrefix(s, prefix []byte) bool {
	return len(s) >= len(prefix) && string(s[0:len(prefix)]) == string(prefix)
}
