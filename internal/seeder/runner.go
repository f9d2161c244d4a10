package seeder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/okian/pelada/internal/domain/model"
	"github.com/okian/pelada/internal/domain/teams"
	"github.com/okian/pelada/pkg/logger"
)

// Errors reported by Run.
var (
	ErrUnhealthy   = errors.New("service unhealthy")
	ErrVerifyDraw  = errors.New("draw verification failed")
	ErrSubmissions = errors.New("player submissions failed")
)

// Run registers the roster, draws teams and verifies the draw.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting pelada seeder",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("players", cfg.Players),
		logger.Int("goalkeepers", cfg.Goalkeepers),
		logger.Int("absent", cfg.Absent),
		logger.Int("workers", cfg.Workers),
		logger.String("seed", cfg.Seed),
		logger.Bool("replay", cfg.Replay))

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, err
	}

	// Step 2: Register players
	created := submitPlayers(ctx, client, cfg, generateSignups(cfg.Players), stats)
	if stats.PlayersFailed > 0 {
		return stats, fmt.Errorf("%w: %d of %d", ErrSubmissions, stats.PlayersFailed, stats.PlayersSubmitted)
	}

	// Step 3: Flag goalkeepers from the front, mark absentees from the back
	for i := 0; i < cfg.Goalkeepers && i < len(created); i++ {
		status, err := toggle(ctx, client, created[i].ID, "goalkeeper")
		switch {
		case err != nil:
			return stats, fmt.Errorf("flag goalkeeper: %w", err)
		case status == http.StatusConflict:
			stats.GoalkeepersRefused++
		case status == http.StatusOK:
			stats.GoalkeepersFlagged++
		default:
			return stats, fmt.Errorf("flag goalkeeper failed with status: %d", status)
		}
	}
	for i := 0; i < cfg.Absent && i < len(created); i++ {
		p := created[len(created)-1-i]
		status, err := toggle(ctx, client, p.ID, "presence")
		if err != nil {
			return stats, fmt.Errorf("mark absent: %w", err)
		}
		if status != http.StatusOK {
			return stats, fmt.Errorf("mark absent failed with status: %d", status)
		}
		stats.MarkedAbsent++
	}

	// Step 4: Draw teams
	result, err := buildTeams(ctx, client, cfg.Seed)
	if err != nil {
		return stats, err
	}
	stats.TeamA, stats.TeamB, stats.Reserves = len(result.TeamA), len(result.TeamB), len(result.Reserves)

	// Step 5: Verify against the roster the service holds
	roster, err := listPlayers(ctx, client)
	if err != nil {
		return stats, err
	}
	if err := VerifyDraw(roster, result); err != nil {
		return stats, fmt.Errorf("%w: %w", ErrVerifyDraw, err)
	}

	// Step 6: Save the outcome
	if cfg.OutputFile != "" {
		if err := saveOutcome(ctx, cfg.OutputFile, roster, result); err != nil {
			logger.Get().Warn(ctx, "failed to save outcome", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *httpClient) error {
	logger.Get().Info(ctx, "checking service health")

	status, err := client.do(ctx, http.MethodGet, "/healthz", nil, nil, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	// Any 200 is healthy; the body is the Prometheus exposition.
	if status != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, status)
	}
	return nil
}

// outcome is the document written to Config.OutputFile.
type outcome struct {
	Players []model.Player `yaml:"players"`
	Teams   teams.Result   `yaml:"teams"`
}

// saveOutcome writes the roster and the draw as YAML.
func saveOutcome(ctx context.Context, filename string, roster []model.Player, r teams.Result) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := yaml.Marshal(outcome{Players: roster, Teams: r})
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write outcome: %w", err)
	}

	logger.Get().Info(ctx, "outcome saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	logger.Get().Info(ctx, "final statistics",
		logger.Int("playersSubmitted", stats.PlayersSubmitted),
		logger.Int("playersCreated", stats.PlayersCreated),
		logger.Int("playersReplayed", stats.PlayersReplayed),
		logger.Int("goalkeepersFlagged", stats.GoalkeepersFlagged),
		logger.Int("goalkeepersRefused", stats.GoalkeepersRefused),
		logger.Int("markedAbsent", stats.MarkedAbsent),
		logger.Int("teamA", stats.TeamA),
		logger.Int("teamB", stats.TeamB),
		logger.Int("reserves", stats.Reserves),
		logger.Duration("duration", stats.Duration))
}
