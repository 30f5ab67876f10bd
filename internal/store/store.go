// Package store persists spendline's collections as one JSON document
// each, with mutual exclusion across concurrent CLI invocations.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// Collection names. Each maps to one persisted JSON document.
const (
	Sessions = "sessions"
	Hourly   = "hourly"
	Daily    = "daily"
	Weekly   = "weekly"
)

// Collections lists every collection a store manages.
var Collections = []string{Sessions, Hourly, Daily, Weekly}

// ErrLockTimeout is returned when another invocation held a collection
// lock past the configured wait. Callers fail fast rather than hang the
// shell prompt.
var ErrLockTimeout = errors.New("lock wait timed out")

// TransactionalStore serializes read-modify-write cycles per collection.
// A missing or corrupt document is presented to fn as nil, never as an
// error, so a damaged file can only cost history, not availability.
type TransactionalStore interface {
	// WithLock loads the collection's document under an exclusive lock,
	// passes it to fn, and persists fn's result before releasing.
	// If fn returns an error nothing is written.
	WithLock(ctx context.Context, collection string, fn func(doc []byte) ([]byte, error)) error

	// Load returns a self-consistent snapshot of the document. The lock
	// is held only for the duration of the read.
	Load(ctx context.Context, collection string) ([]byte, error)

	Close() error
}

// Mutate runs fn over the decoded document under the collection lock and
// persists the mutated map.
func Mutate[T any](ctx context.Context, s TransactionalStore, collection string, fn func(doc map[string]T) error) error {
	return s.WithLock(ctx, collection, func(raw []byte) ([]byte, error) {
		doc := decode[T](raw)
		if err := fn(doc); err != nil {
			return nil, err
		}
		return json.MarshalIndent(doc, "", "  ")
	})
}

// Fetch returns the decoded document without mutating it.
func Fetch[T any](ctx context.Context, s TransactionalStore, collection string) (map[string]T, error) {
	raw, err := s.Load(ctx, collection)
	if err != nil {
		return nil, err
	}
	return decode[T](raw), nil
}

// Clear replaces the collection's document with an empty one.
func Clear(ctx context.Context, s TransactionalStore, collection string) error {
	return s.WithLock(ctx, collection, func([]byte) ([]byte, error) {
		return []byte("{}"), nil
	})
}

// decode unmarshals a stored document. Absent or malformed content
// yields an empty map so state damage never takes the status line down.
func decode[T any](raw []byte) map[string]T {
	doc := make(map[string]T)
	if len(raw) == 0 {
		return doc
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return make(map[string]T)
	}
	return doc
}
