// Package store persists shop state.
//
// All state lives in a key-value store as JSON snapshots, one key per
// collection. KV is the backend contract; Memory, Postgres and Redis
// implement it. Shop owns the in-memory collections and rewrites the
// matching snapshot on every mutation.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by KV.Get for a missing or expired key.
var ErrNotFound = errors.New("key not found")

// KV is a string-keyed byte store.
type KV interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A positive ttl expires the key after
	// that duration; zero keeps it until deleted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Snapshot keys.
const (
	KeyToys          = "leopold_toys"
	KeyCategories    = "leopold_categories"
	KeyOrders        = "leopold_orders"
	KeySettings      = "leopold_settings"
	KeyToyOfTheDay   = "leopold_toy_of_the_day_id"
	keySessionPrefix = "leopold_admin_auth:"
)

// SessionKey is the key recording an admin session.
func SessionKey(id string) string {
	return keySessionPrefix + id
}
