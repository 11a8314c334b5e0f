package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"klar/config"

	"github.com/redis/go-redis/v9"
)

const redisTimeout = 2 * time.Second

// RedisKV stores keys as plain redis strings
type RedisKV struct {
	rdb *redis.Client
}

// NewRedisKV connects to redis and checks the connection
func NewRedisKV(cfg config.RedisConfig) (*RedisKV, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return &RedisKV{rdb: rdb}, nil
}

// Get returns the value stored under key
func (s *RedisKV) Get(key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Put stores value under key without expiration
func (s *RedisKV) Put(key string, value []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	return s.rdb.Set(ctx, key, value, 0).Err()
}

// Delete removes key
func (s *RedisKV) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	return s.rdb.Del(ctx, key).Err()
}

// Keys lists the keys starting with prefix using SCAN
func (s *RedisKV) Keys(prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	var keys []string
	iter := s.rdb.Scan(ctx, 0, escapeGlob(prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// globEscaper quotes the pattern characters of SCAN MATCH
var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// escapeGlob makes s match itself literally in a redis glob pattern
func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}

// Close closes the client
func (s *RedisKV) Close() error {
	return s.rdb.Close()
}
