// Package roster holds the rules a host applies around the weekly roster:
// derived counts, the goalkeeper flag cap, and when teams may be drawn.
package roster

import (
	"errors"
	"math"
	"strings"

	"github.com/okian/pelada/internal/domain/model"
)

// Reference policy for the weekly game.
const (
	// DefaultMinConfirmed is the number of confirmed players needed before teams are drawn.
	DefaultMinConfirmed = 10
	// DefaultMaxGoalkeepers caps how many players may carry the goalkeeper flag.
	DefaultMaxGoalkeepers = 3
)

// Sentinel errors for roster rules.
var (
	ErrEmptyName          = errors.New("player name must not be empty")
	ErrInvalidAmount      = errors.New("amount paid must be a non-negative number")
	ErrGoalkeeperLimit    = errors.New("goalkeeper limit reached")
	ErrNotEnoughConfirmed = errors.New("not enough confirmed players")
)

// Confirmed counts present players.
func Confirmed(players []model.Player) int {
	n := 0
	for _, p := range players {
		if p.Present {
			n++
		}
	}
	return n
}

// Goalkeepers counts goalkeeper-flagged players, present or not.
func Goalkeepers(players []model.Player) int {
	n := 0
	for _, p := range players {
		if p.Goalkeeper {
			n++
		}
	}
	return n
}

// TotalPaid sums what the roster has paid.
func TotalPaid(players []model.Player) float64 {
	var total float64
	for _, p := range players {
		total += p.AmountPaid
	}
	return total
}

// CanBuildTeams reports whether enough players confirmed. minConfirmed <= 0
// disables the gate.
func CanBuildTeams(players []model.Player, minConfirmed int) bool {
	if minConfirmed <= 0 {
		return true
	}
	return Confirmed(players) >= minConfirmed
}

// CanFlagGoalkeeper reports whether one more goalkeeper flag fits under limit.
// limit <= 0 disables the cap.
func CanFlagGoalkeeper(players []model.Player, limit int) bool {
	if limit <= 0 {
		return true
	}
	return Goalkeepers(players) < limit
}

// ValidateName trims name and rejects blank values.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

// ValidateAmount rejects negative and non-finite amounts.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}
