package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/okian/pelada/internal/domain/model"
	"github.com/okian/pelada/internal/domain/roster"
	"github.com/okian/pelada/internal/domain/summary"
	"github.com/okian/pelada/internal/domain/teams"
)

// Output formats of the teams command.
const (
	outputText = "text"
	outputYAML = "yaml"
	outputJSON = "json"
)

var (
	errUnknownOutput = errors.New("unknown output format")
	errDuplicateID   = errors.New("duplicate player id")
)

// rosterFile is the on-disk roster read by the teams command.
type rosterFile struct {
	Title    string         `yaml:"title"`
	Currency string         `yaml:"currency"`
	Players  []model.Player `yaml:"players"`
}

func newTeamsCmd() *cobra.Command {
	var (
		rosterPath   string
		seed         string
		output       string
		minConfirmed int
	)

	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Draw teams from a YAML roster file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rf, err := readRosterFile(rosterPath)
			if err != nil {
				return err
			}
			if !roster.CanBuildTeams(rf.Players, minConfirmed) {
				return fmt.Errorf("%w: %d confirmed, need %d",
					roster.ErrNotEnoughConfirmed, roster.Confirmed(rf.Players), minConfirmed)
			}

			var rng teams.RNG
			if seed != "" {
				rng = teams.Seeded(seed)
			}
			result := teams.Partition(rf.Players, rng)
			return writeDraw(cmd.OutOrStdout(), output, rf, result)
		},
	}

	cmd.Flags().StringVarP(&rosterPath, "roster", "r", "", "path to the roster YAML file")
	cmd.Flags().StringVarP(&seed, "seed", "s", "", "label that makes the draw reproducible")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text, yaml or json")
	cmd.Flags().IntVar(&minConfirmed, "min-confirmed", 0, "refuse to draw below this many confirmed players")
	_ = cmd.MarkFlagRequired("roster")

	return cmd
}

// readRosterFile loads a roster and gives every player without an id a fresh one.
func readRosterFile(path string) (*rosterFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var rf rosterFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(rf.Players))
	for i := range rf.Players {
		p := &rf.Players[i]
		name, err := roster.ValidateName(p.Name)
		if err != nil {
			return nil, fmt.Errorf("player %d: %w", i+1, err)
		}
		p.Name = name
		if err := roster.ValidateAmount(p.AmountPaid); err != nil {
			return nil, fmt.Errorf("player %q: %w", name, err)
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: %s", errDuplicateID, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return &rf, nil
}

func writeDraw(w io.Writer, format string, rf *rosterFile, result teams.Result) error {
	switch strings.ToLower(format) {
	case outputText:
		text := summary.Render(rf.Players, &result,
			summary.WithTitle(rf.Title),
			summary.WithCurrency(rf.Currency),
		)
		_, err := io.WriteString(w, text)
		return err
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	default:
		return fmt.Errorf("%w: %q", errUnknownOutput, format)
	}
}
