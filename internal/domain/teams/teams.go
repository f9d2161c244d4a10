// Package teams splits a roster into two squads and a reserve pool.
//
// Partition is pure: it reads the roster, never mutates it, and keeps no state
// between calls. The only source of variation is the RNG handed to it.
package teams

import (
	"github.com/okian/pelada/internal/domain/model"
)

// Squad composition.
const (
	// SquadSize is the number of players per team, goalkeeper included.
	SquadSize = 5
	// GoalkeepersPerTeam caps goalkeeper-flagged players on each team.
	GoalkeepersPerTeam = 1
)

// Result is one draw. Order inside each group carries no meaning.
type Result struct {
	TeamA    []model.Player `json:"team_a" yaml:"team_a"`
	TeamB    []model.Player `json:"team_b" yaml:"team_b"`
	Reserves []model.Player `json:"reserves" yaml:"reserves"`
}

// Placed returns how many players ended up on a team.
func (r Result) Placed() int {
	return len(r.TeamA) + len(r.TeamB)
}

// Partition draws Team A, Team B and the reserves from the present players of
// roster. A nil rng uses the process-wide default source.
//
// Goalkeepers are seated first, one per team; goalkeepers beyond that go to the
// reserves even when line slots stay open. Line players then fill Team A up to
// SquadSize and Team B after it. Everything left over is a reserve.
func Partition(roster []model.Player, rng RNG) Result {
	if rng == nil {
		rng = defaultRNG
	}

	var keepers, line []model.Player
	for _, p := range roster {
		if !p.Present {
			continue
		}
		if p.Goalkeeper {
			keepers = append(keepers, p)
		} else {
			line = append(line, p)
		}
	}

	keepers = Shuffle(keepers, rng)
	line = Shuffle(line, rng)

	res := Result{
		TeamA:    make([]model.Player, 0, SquadSize),
		TeamB:    make([]model.Player, 0, SquadSize),
		Reserves: make([]model.Player, 0),
	}

	k := 0
	if k < len(keepers) {
		res.TeamA = append(res.TeamA, keepers[k])
		k++
	}
	if k < len(keepers) {
		res.TeamB = append(res.TeamB, keepers[k])
		k++
	}
	res.Reserves = append(res.Reserves, keepers[k:]...)

	requiredForA := SquadSize - len(res.TeamA)
	requiredForB := SquadSize - len(res.TeamB)

	l := 0
	for i := 0; i < requiredForA && l < len(line); i++ {
		res.TeamA = append(res.TeamA, line[l])
		l++
	}
	for i := 0; i < requiredForB && l < len(line); i++ {
		res.TeamB = append(res.TeamB, line[l])
		l++
	}
	res.Reserves = append(res.Reserves, line[l:]...)

	return res
}
