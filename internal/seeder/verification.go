package seeder

import (
	"errors"
	"fmt"

	"github.com/okian/pelada/internal/domain/model"
	"github.com/okian/pelada/internal/domain/teams"
)

// VerifyDraw checks a draw against the roster it was made from: every
// present player placed exactly once, no absent player placed, teams of at
// most five with at most one goalkeeper each.
func VerifyDraw(roster []model.Player, r teams.Result) error {
	var errs []error

	placed := make(map[string]int)
	for _, group := range [][]model.Player{r.TeamA, r.TeamB, r.Reserves} {
		for _, p := range group {
			placed[p.ID]++
		}
	}

	present := 0
	known := make(map[string]bool, len(roster))
	for _, p := range roster {
		known[p.ID] = true
		n := placed[p.ID]
		switch {
		case p.Present && n != 1:
			errs = append(errs, fmt.Errorf("player %s placed %d times", p.ID, n))
		case !p.Present && n != 0:
			errs = append(errs, fmt.Errorf("absent player %s was placed", p.ID))
		}
		if p.Present {
			present++
		}
	}
	for id := range placed {
		if !known[id] {
			errs = append(errs, fmt.Errorf("unknown player %s was placed", id))
		}
	}
	if total := len(r.TeamA) + len(r.TeamB) + len(r.Reserves); total != present {
		errs = append(errs, fmt.Errorf("%d players placed, %d present", total, present))
	}

	for name, team := range map[string][]model.Player{"A": r.TeamA, "B": r.TeamB} {
		if len(team) > teams.SquadSize {
			errs = append(errs, fmt.Errorf("team %s has %d players", name, len(team)))
		}
		keepers := 0
		for _, p := range team {
			if p.Goalkeeper {
				keepers++
			}
		}
		if keepers > teams.GoalkeepersPerTeam {
			errs = append(errs, fmt.Errorf("team %s has %d goalkeepers", name, keepers))
		}
	}

	return errors.Join(errs...)
}
