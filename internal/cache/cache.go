// Package cache stores serialized read results under explicit keys. Callers
// delete the affected keys after a mutation succeeds; nothing is refreshed
// implicitly.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"notewise/pkg/logger"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// GetJSON decodes the cached value under key into dst.
func GetJSON(ctx context.Context, c Cache, key string, dst interface{}) error {
	raw, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func SetJSON(ctx context.Context, c Cache, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, raw, ttl)
}

// Fetch serves key from c, falling back to load on a miss or a cache error.
// Load errors are never cached.
func Fetch[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var v T
	err := GetJSON(ctx, c, key, &v)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrMiss) {
		logger.Sugar.Warnf("Cache read for %s failed, loading from store: %v", key, err)
	}

	v, err = load()
	if err != nil {
		return v, err
	}
	if err := SetJSON(ctx, c, key, v, ttl); err != nil {
		logger.Sugar.Warnf("Failed to cache %s: %v", key, err)
	}
	return v, nil
}
