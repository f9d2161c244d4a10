package repository

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/okian/pelada/internal/domain/model"
)

type storedPlayer struct {
	player model.Player
	seq    uint64
}

// MemoryStore keeps the roster in a concurrent map. Order comes from an
// insertion sequence assigned on first Put.
type MemoryStore struct {
	players *xsync.Map[string, storedPlayer]
	seq     atomic.Uint64
}

// NewMemoryStore returns an empty in-memory roster.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{players: xsync.NewMap[string, storedPlayer]()}
}

// List returns the roster in insertion order.
func (s *MemoryStore) List(ctx context.Context) ([]model.Player, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		observe("list", start, err)
		return nil, err
	}

	stored := make([]storedPlayer, 0, s.players.Size())
	s.players.Range(func(_ string, v storedPlayer) bool {
		stored = append(stored, v)
		return true
	})
	sort.Slice(stored, func(i, j int) bool { return stored[i].seq < stored[j].seq })

	out := make([]model.Player, len(stored))
	for i, v := range stored {
		out[i] = v.player
	}
	observe("list", start, nil)
	return out, nil
}

// Get returns one player.
func (s *MemoryStore) Get(ctx context.Context, id string) (model.Player, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		observe("get", start, err)
		return model.Player{}, err
	}
	v, ok := s.players.Load(id)
	if !ok {
		observe("get", start, ErrNotFound)
		return model.Player{}, ErrNotFound
	}
	observe("get", start, nil)
	return v.player, nil
}

// Put inserts or updates a player.
func (s *MemoryStore) Put(ctx context.Context, p model.Player) error {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		observe("put", start, err)
		return err
	}
	actual, loaded := s.players.LoadOrStore(p.ID, storedPlayer{player: p, seq: s.seq.Add(1)})
	if loaded {
		s.players.Store(p.ID, storedPlayer{player: p, seq: actual.seq})
	}
	observe("put", start, nil)
	return nil
}

// Delete removes a player.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		observe("delete", start, err)
		return err
	}
	if _, ok := s.players.LoadAndDelete(id); !ok {
		observe("delete", start, ErrNotFound)
		return ErrNotFound
	}
	observe("delete", start, nil)
	return nil
}

// Count returns the roster size.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	return s.players.Size(), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
