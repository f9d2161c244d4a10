package teams

import (
	"math/rand"

	"github.com/okian/pelada/internal/domain/model"
	"github.com/zeebo/xxh3"
)

// RNG yields uniform indexes in [0, n). *rand.Rand satisfies it.
type RNG interface {
	Intn(n int) int
}

// globalRNG delegates to the goroutine-safe top-level math/rand source.
type globalRNG struct{}

func (globalRNG) Intn(n int) int { return rand.Intn(n) } //nolint:gosec // team draws are not security sensitive

var defaultRNG RNG = globalRNG{} //nolint:gochecknoglobals // stateless default source

// Default returns the process-wide RNG used when none is injected.
func Default() RNG {
	return defaultRNG
}

// Seeded returns a deterministic RNG derived from label, so the same label
// always reproduces the same draw for the same roster. The result is not safe
// for concurrent use.
func Seeded(label string) RNG {
	seed := int64(xxh3.HashString(label)) //nolint:gosec // wraparound is fine for a seed
	return rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic seed for reproducible draws
}

// Shuffle returns a uniformly permuted copy of players (Fisher-Yates).
func Shuffle(players []model.Player, rng RNG) []model.Player {
	if rng == nil {
		rng = defaultRNG
	}
	out := make([]model.Player, len(players))
	copy(out, players)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
