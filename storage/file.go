package storage

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const fileExt = ".json"

// FileKV stores one file per key under <dataDir>/kv and keeps read values
// in memory
type FileKV struct {
	dataDir string
	cache   map[string][]byte
	mu      sync.RWMutex
}

// NewFileKV creates a new file storage instance
func NewFileKV(dataDir string) (*FileKV, error) {
	kvDir := filepath.Join(dataDir, "kv")
	if err := os.MkdirAll(kvDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create kv directory: %w", err)
	}

	return &FileKV{
		dataDir: kvDir,
		cache:   make(map[string][]byte),
	}, nil
}

// Get returns the value stored under key
func (s *FileKV) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	if v, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return append([]byte(nil), v...), true, nil
	}
	s.mu.RUnlock()

	// Miss: read the file under the write lock so a concurrent Put cannot
	// land between the read and the cache fill
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.cache[key]; ok {
		return append([]byte(nil), v...), true, nil
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	s.cache[key] = data

	return append([]byte(nil), data...), true, nil
}

// Put writes value to disk, then to the cache
func (s *FileKV) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Write through a temp file so a crash never leaves half a record
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, value, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	s.cache[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key from disk and cache
func (s *FileKV) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.cache, key)
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Keys lists the keys starting with prefix, sorted
func (s *FileKV) Keys(prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read kv directory: %w", err)
	}

	var keys []string
	for _, file := range files {
		name := file.Name()
		if file.IsDir() || filepath.Ext(name) != fileExt {
			continue
		}

		key, err := url.PathUnescape(strings.TrimSuffix(name, fileExt))
		if err != nil {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	return keys, nil
}

// Close is a no-op; every Put is already on disk
func (s *FileKV) Close() error {
	return nil
}

func (s *FileKV) path(key string) string {
	return filepath.Join(s.dataDir, url.PathEscape(key)+fileExt)
}
