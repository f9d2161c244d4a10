package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/okian/pelada/internal/domain/model"
)

// SQLStore keeps the roster in a SQL table. Queries use $n placeholders,
// which both lib/pq and modernc sqlite accept.
type SQLStore struct {
	db           *sql.DB
	maxOpenConns int
	createSchema bool
}

// NewSQLStore opens dsn with the named database/sql driver and creates the schema.
func NewSQLStore(ctx context.Context, driver, dsn string, opts ...Option) (*SQLStore, error) {
	s := &SQLStore{createSchema: true}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if s.maxOpenConns > 0 {
		db.SetMaxOpenConns(s.maxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	s.db = db

	if s.createSchema {
		if err := CreateSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return s, nil
}

// CreateSchema creates the player table.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS player (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    present BOOLEAN NOT NULL DEFAULT FALSE,
    amount_paid DOUBLE PRECISION NOT NULL DEFAULT 0,
    goalkeeper BOOLEAN NOT NULL DEFAULT FALSE,
    position BIGINT NOT NULL
)`

const (
	selectPlayers = `SELECT id, name, present, amount_paid, goalkeeper FROM player`

	upsertPlayer = `
INSERT INTO player (id, name, present, amount_paid, goalkeeper, position)
VALUES ($1, $2, $3, $4, $5, (SELECT COALESCE(MAX(position), 0) + 1 FROM player))
ON CONFLICT (id) DO UPDATE SET
    name = excluded.name,
    present = excluded.present,
    amount_paid = excluded.amount_paid,
    goalkeeper = excluded.goalkeeper`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(r rowScanner) (model.Player, error) {
	var p model.Player
	err := r.Scan(&p.ID, &p.Name, &p.Present, &p.AmountPaid, &p.Goalkeeper)
	return p, err
}

// List returns the roster in insertion order.
func (s *SQLStore) List(ctx context.Context) (players []model.Player, err error) {
	start := time.Now()
	defer func() { observe("list", start, err) }()

	rows, err := s.db.QueryContext(ctx, selectPlayers+` ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	players = []model.Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

// Get returns one player.
func (s *SQLStore) Get(ctx context.Context, id string) (p model.Player, err error) {
	start := time.Now()
	defer func() { observe("get", start, err) }()

	p, err = scanPlayer(s.db.QueryRowContext(ctx, selectPlayers+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Player{}, ErrNotFound
	}
	if err != nil {
		return model.Player{}, fmt.Errorf("get player %s: %w", id, err)
	}
	return p, nil
}

// Put inserts or updates a player.
func (s *SQLStore) Put(ctx context.Context, p model.Player) (err error) {
	start := time.Now()
	defer func() { observe("put", start, err) }()

	if _, err = s.db.ExecContext(ctx, upsertPlayer, p.ID, p.Name, p.Present, p.AmountPaid, p.Goalkeeper); err != nil {
		return fmt.Errorf("put player %s: %w", p.ID, err)
	}
	return nil
}

// Delete removes a player.
func (s *SQLStore) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { observe("delete", start, err) }()

	res, err := s.db.ExecContext(ctx, `DELETE FROM player WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete player %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete player %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the roster size.
func (s *SQLStore) Count(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { observe("count", start, err) }()

	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM player`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count players: %w", err)
	}
	return n, nil
}

// Close releases the connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
