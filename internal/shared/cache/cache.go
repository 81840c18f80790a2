// Package cache stores short-lived JSON-encoded values.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache is a TTL key-value store. Values are JSON encoded.
type Cache interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string, any) error { return ErrMiss }

func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }

var _ Cache = Noop{}
