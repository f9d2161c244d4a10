// Package repository defines the roster store interface and its implementations.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/pelada/internal/domain/model"
	"github.com/okian/pelada/pkg/metrics"
)

// Store provides read/write access to the roster.
type Store interface {
	// List returns every player in insertion order.
	List(ctx context.Context) ([]model.Player, error)

	// Get returns one player. Returns ErrNotFound if the id is unknown.
	Get(ctx context.Context, id string) (model.Player, error)

	// Put inserts a player or updates it in place, keeping its position.
	Put(ctx context.Context, p model.Player) error

	// Delete removes a player. Returns ErrNotFound if the id is unknown.
	Delete(ctx context.Context, id string) error

	// Count returns the number of players on the roster.
	Count(ctx context.Context) (int, error)

	Close() error
}

// Open returns the store selected by driver: memory, sqlite or postgres.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (Store, error) {
	switch driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite", "postgres":
		return NewSQLStore(ctx, driver, dsn, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// observe records latency and failure of a store call.
func observe(op string, start time.Time, err error) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000.0)
	if err != nil && !errors.Is(err, ErrNotFound) {
		metrics.RecordStoreError(op)
	}
}
