// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	repository "github.com/okian/pelada/internal/adapters/repository"
	"github.com/okian/pelada/internal/domain/dedupe"
	"github.com/okian/pelada/internal/domain/model"
	"github.com/okian/pelada/internal/domain/roster"
	"github.com/okian/pelada/internal/domain/summary"
	"github.com/okian/pelada/internal/domain/teams"
	"github.com/okian/pelada/pkg/logger"
	"github.com/okian/pelada/pkg/metrics"
)

// Errors returned by the service in addition to the roster sentinels.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrPlayerNotFound = repository.ErrNotFound
)

// Service keeps the roster and the last drawn teams.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	deduper dedupe.Deduper

	// rosterMu serializes read-modify-write roster changes.
	rosterMu sync.Mutex

	// Cached draw. generation moves on every invalidating change so a draw
	// that raced with one is returned but not cached.
	cacheMu    sync.Mutex
	generation uint64
	cached     *teams.Result

	rng   teams.RNG
	rngMu sync.Mutex

	// Configuration
	dedupeSize     int
	minConfirmed   int
	maxGoalkeepers int
	summaryOpts    []summary.Option

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the roster store. The service closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDedupeSize bounds the idempotency-key memory. Zero or less is unbounded.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		s.dedupeSize = size
	}
}

// WithMinConfirmed sets how many confirmed players a draw needs. Zero disables the gate.
func WithMinConfirmed(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.minConfirmed = n
		}
	}
}

// WithMaxGoalkeepers caps goalkeeper flags on the roster. Zero disables the cap.
func WithMaxGoalkeepers(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxGoalkeepers = n
		}
	}
}

// WithRNG injects the random source used for unseeded draws.
// The service serializes access, so a *rand.Rand is safe here.
func WithRNG(rng teams.RNG) Option {
	return func(s *Service) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithSummaryOptions sets the title and currency of the share message.
func WithSummaryOptions(opts ...summary.Option) Option {
	return func(s *Service) {
		s.summaryOpts = append(s.summaryOpts, opts...)
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dedupeSize:     10_000,
		minConfirmed:   roster.DefaultMinConfirmed,
		maxGoalkeepers: roster.DefaultMaxGoalkeepers,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting roster service...")

	if s.store == nil {
		s.store = repository.NewMemoryStore()
		s.logger.Info(ctx, "using memory store")
	}
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)

	s.started = true
	s.refreshRosterMetrics(ctx)
	s.logger.Info(ctx, "roster service started",
		logger.Int("minConfirmed", s.minConfirmed),
		logger.Int("maxGoalkeepers", s.maxGoalkeepers),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop releases the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping roster service...")

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing store", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(context.Background(), "roster service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// Players returns the roster in insertion order.
func (s *Service) Players(ctx context.Context) ([]model.Player, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.List(ctx)
}

// AddPlayer registers a confirmed, unpaid line player. A non-empty
// idempotencyKey already seen returns the player created for it and replayed=true.
func (s *Service) AddPlayer(ctx context.Context, name, idempotencyKey string) (model.Player, bool, error) {
	if err := s.ready(); err != nil {
		return model.Player{}, false, err
	}
	name, err := roster.ValidateName(name)
	if err != nil {
		return model.Player{}, false, err
	}

	s.rosterMu.Lock()
	defer s.rosterMu.Unlock()

	p := model.Player{ID: uuid.NewString(), Name: name, Present: true}

	if idempotencyKey != "" {
		if existing, seen := s.deduper.SeenAndRecord(ctx, idempotencyKey, p.ID); seen {
			prev, err := s.store.Get(ctx, existing)
			switch {
			case err == nil:
				metrics.RecordIdempotentReplay()
				s.logger.Debug(ctx, "replayed add player",
					logger.String("key", idempotencyKey),
					logger.String("playerID", prev.ID),
				)
				return prev, true, nil
			case errors.Is(err, repository.ErrNotFound):
				// The player was removed since; the key now adds a new one.
				s.deduper.Unrecord(ctx, idempotencyKey)
				s.deduper.SeenAndRecord(ctx, idempotencyKey, p.ID)
			default:
				return model.Player{}, false, err
			}
		}
	}

	if err := s.store.Put(ctx, p); err != nil {
		if idempotencyKey != "" {
			s.deduper.Unrecord(ctx, idempotencyKey)
		}
		return model.Player{}, false, fmt.Errorf("add player: %w", err)
	}

	s.invalidate()
	s.afterMutation(ctx, "add", p)
	return p, false, nil
}

// RemovePlayer deletes a player from the roster.
func (s *Service) RemovePlayer(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}

	s.rosterMu.Lock()
	defer s.rosterMu.Unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate()
	s.afterMutation(ctx, "remove", model.Player{ID: id})
	return nil
}

// TogglePresence flips whether the player is confirmed for the session.
func (s *Service) TogglePresence(ctx context.Context, id string) (model.Player, error) {
	return s.update(ctx, "presence", id, true, func(p *model.Player) error {
		p.Present = !p.Present
		return nil
	})
}

// ToggleGoalkeeper flips the goalkeeper flag. Setting it fails with
// roster.ErrGoalkeeperLimit when the roster already has the maximum.
func (s *Service) ToggleGoalkeeper(ctx context.Context, id string) (model.Player, error) {
	return s.update(ctx, "goalkeeper", id, true, func(p *model.Player) error {
		if !p.Goalkeeper {
			all, err := s.store.List(ctx)
			if err != nil {
				return err
			}
			if !roster.CanFlagGoalkeeper(all, s.maxGoalkeepers) {
				return fmt.Errorf("%w: at most %d goalkeepers", roster.ErrGoalkeeperLimit, s.maxGoalkeepers)
			}
		}
		p.Goalkeeper = !p.Goalkeeper
		return nil
	})
}

// SetPayment records the amount a player paid. The drawn teams are kept.
func (s *Service) SetPayment(ctx context.Context, id string, amount float64) (model.Player, error) {
	if err := roster.ValidateAmount(amount); err != nil {
		return model.Player{}, err
	}
	return s.update(ctx, "payment", id, false, func(p *model.Player) error {
		p.AmountPaid = amount
		return nil
	})
}

// update applies fn to one player under the roster lock and persists it.
func (s *Service) update(ctx context.Context, op, id string, invalidates bool,
	fn func(p *model.Player) error,
) (model.Player, error) {
	if err := s.ready(); err != nil {
		return model.Player{}, err
	}

	s.rosterMu.Lock()
	defer s.rosterMu.Unlock()

	p, err := s.store.Get(ctx, id)
	if err != nil {
		return model.Player{}, err
	}

	if err := fn(&p); err != nil {
		return model.Player{}, err
	}
	if err := s.store.Put(ctx, p); err != nil {
		return model.Player{}, fmt.Errorf("%s: %w", op, err)
	}

	if invalidates {
		s.invalidate()
	}
	s.afterMutation(ctx, op, p)
	return p, nil
}

// BuildTeams draws Team A, Team B and the reserves from the confirmed
// players. A non-empty seed makes the draw reproducible.
func (s *Service) BuildTeams(ctx context.Context, seed string) (teams.Result, error) {
	if err := s.ready(); err != nil {
		return teams.Result{}, err
	}

	s.cacheMu.Lock()
	gen := s.generation
	s.cacheMu.Unlock()

	players, err := s.store.List(ctx)
	if err != nil {
		return teams.Result{}, err
	}

	if !roster.CanBuildTeams(players, s.minConfirmed) {
		metrics.RecordTeamsBuildRefused()
		return teams.Result{}, fmt.Errorf("%w: %d of %d",
			roster.ErrNotEnoughConfirmed, roster.Confirmed(players), s.minConfirmed)
	}

	start := time.Now()
	var result teams.Result
	switch {
	case seed != "":
		result = teams.Partition(players, teams.Seeded(seed))
	case s.rng != nil:
		s.rngMu.Lock()
		result = teams.Partition(players, s.rng)
		s.rngMu.Unlock()
	default:
		result = teams.Partition(players, nil)
	}
	took := time.Since(start)
	metrics.RecordTeamsBuilt(len(result.TeamA), len(result.TeamB), len(result.Reserves),
		float64(took.Microseconds())/1000.0)

	s.cacheMu.Lock()
	cached := s.generation == gen
	if cached {
		s.cached = &result
	}
	s.cacheMu.Unlock()

	s.logger.Info(ctx, "teams drawn",
		logger.Int("teamA", len(result.TeamA)),
		logger.Int("teamB", len(result.TeamB)),
		logger.Int("reserves", len(result.Reserves)),
		logger.String("seed", seed),
		logger.Bool("cached", cached),
		logger.Duration("took", took),
	)
	return result, nil
}

// CurrentTeams returns the last draw while the roster has not changed since.
func (s *Service) CurrentTeams(_ context.Context) (teams.Result, bool) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.cached == nil {
		return teams.Result{}, false
	}
	return *s.cached, true
}

// Summary renders the share message and its link.
func (s *Service) Summary(ctx context.Context) (string, string, error) {
	players, err := s.Players(ctx)
	if err != nil {
		return "", "", err
	}

	var draw *teams.Result
	if current, ok := s.CurrentTeams(ctx); ok {
		draw = &current
	}

	text := summary.Render(players, draw, s.summaryOpts...)
	return text, summary.ShareURL(text), nil
}

// invalidate discards the cached draw.
func (s *Service) invalidate() {
	s.cacheMu.Lock()
	s.generation++
	s.cached = nil
	s.cacheMu.Unlock()
}

func (s *Service) afterMutation(ctx context.Context, op string, p model.Player) {
	metrics.RecordRosterMutation(op)
	s.logger.Debug(ctx, "roster changed",
		logger.String("op", op),
		logger.String("playerID", p.ID),
	)
	s.refreshRosterMetrics(ctx)
}

func (s *Service) refreshRosterMetrics(ctx context.Context) {
	players, err := s.store.List(ctx)
	if err != nil {
		s.logger.Warn(ctx, "roster metrics refresh failed", logger.Error(err))
		return
	}
	metrics.UpdateRoster(len(players), roster.Confirmed(players),
		roster.Goalkeepers(players), roster.TotalPaid(players))
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        started,
		"minConfirmed":   s.minConfirmed,
		"maxGoalkeepers": s.maxGoalkeepers,
		"dedupeSize":     s.dedupeSize,
	}

	s.cacheMu.Lock()
	stats["teamsCached"] = s.cached != nil
	stats["generation"] = s.generation
	s.cacheMu.Unlock()

	if started {
		ctx := context.Background()
		players, err := s.store.List(ctx)
		if err == nil {
			stats["players"] = len(players)
			stats["confirmed"] = roster.Confirmed(players)
			stats["goalkeepers"] = roster.Goalkeepers(players)
			stats["totalPaid"] = roster.TotalPaid(players)
			stats["canBuildTeams"] = roster.CanBuildTeams(players, s.minConfirmed)
		}
		stats["idempotencyKeys"] = s.Size()
	}

	return stats
}

// MinConfirmed returns how many confirmed players a draw needs.
func (s *Service) MinConfirmed() int {
	return s.minConfirmed
}

// Size returns the number of remembered idempotency keys.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
