package storage

import (
	"errors"
	"fmt"
	"strings"

	"klar/config"
)

// KV is the key-value backend the settings and sessions are persisted in.
// Get reports a missing key with ok=false and a nil error.
type KV interface {
	Get(key string) (value []byte, ok bool, err error)
	Put(key string, value []byte) error
	Delete(key string) error
	Keys(prefix string) ([]string, error)
	Close() error
}

// Supported drivers
const (
	DriverBolt  = "bolt"
	DriverFile  = "file"
	DriverRedis = "redis"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name
var ErrUnknownDriver = errors.New("unknown storage driver")

// Open creates the KV backend selected by the configuration
func Open(cfg *config.Config) (KV, error) {
	switch strings.ToLower(cfg.Storage.Driver) {
	case DriverBolt, "":
		return NewBoltKV(cfg.Storage.DataDir)
	case DriverFile:
		return NewFileKV(cfg.Storage.DataDir)
	case DriverRedis:
		return NewRedisKV(cfg.Redis)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Storage.Driver)
}
