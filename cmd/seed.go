package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/pelada/internal/seeder"
)

const (
	defaultSeedURL     = "http://localhost:9080"
	defaultSeedPlayers = 14
	defaultSeedKeepers = 2
)

func newSeedCmd() *cobra.Command {
	cfg := seeder.Config{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill a running service with a synthetic roster and verify a draw",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := seeder.Run(cmd.Context(), &cfg)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"created=%d replayed=%d team_a=%d team_b=%d reserves=%d duration=%s\n",
				stats.PlayersCreated, stats.PlayersReplayed,
				stats.TeamA, stats.TeamB, stats.Reserves, stats.Duration)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.BaseURL, "url", "u", defaultSeedURL, "base URL of the pelada service")
	f.IntVarP(&cfg.Players, "players", "n", defaultSeedPlayers, "number of players to register")
	f.IntVarP(&cfg.Goalkeepers, "goalkeepers", "g", defaultSeedKeepers, "number of players to flag as goalkeeper")
	f.IntVar(&cfg.Absent, "absent", 0, "number of players to mark absent")
	f.IntVarP(&cfg.Workers, "workers", "w", seeder.DefaultWorkers, "concurrent HTTP workers")
	f.DurationVar(&cfg.Timeout, "timeout", seeder.DefaultTimeout, "per-request timeout")
	f.StringVarP(&cfg.Seed, "seed", "s", "", "draw seed; empty for a random draw")
	f.BoolVar(&cfg.Replay, "replay", false, "send every add twice with the same Idempotency-Key")
	f.StringVarP(&cfg.OutputFile, "output", "o", "", "write the roster and draw to this YAML file")

	return cmd
}
