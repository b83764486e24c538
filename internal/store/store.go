// Package store provides small JSON key/value stores with expiry.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get for missing or expired keys.
var ErrNotFound = errors.New("key not found")

type Store interface {
	Get(ctx context.Context, key string, v any) error
	Set(ctx context.Context, key string, v any, expireAt time.Time) error
	SetTTL(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
