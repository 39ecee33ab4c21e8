// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides the caching infrastructure: a byte-value
// cache interface with memory and Redis implementations, plus a typed
// cache for published page lookups.
package cache

import (
	"context"
	"time"
)

// Cache is the interface all backends implement. Implementations must
// be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. Returns ErrCacheMiss when the key is
	// absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL. A zero TTL uses the
	// backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}

// Error represents an error type for cache operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrCacheMiss indicates the key was not found or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)
