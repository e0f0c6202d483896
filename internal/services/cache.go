package services

import (
	"context"
	"time"
)

// Cache defines the interface for the persistent key-value store.
// The engine treats it as a durable per-key string store: values survive
// process restarts, and a missing key reads as an empty string.
type Cache interface {
	// Ping tests the store connection
	Ping(ctx context.Context) error

	// Set stores a key-value pair with optional expiration (0 = no expiry)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	// Get retrieves a value by key; returns "" for a missing key
	Get(ctx context.Context, key string) (string, error)

	// Del deletes one or more keys
	Del(ctx context.Context, keys ...string) error

	// Exists checks if keys exist
	Exists(ctx context.Context, keys ...string) (bool, error)

	// Close closes the store connection
	Close() error

	// WaitForConnection waits for the store to be available with retries
	WaitForConnection(ctx context.Context) error
}
