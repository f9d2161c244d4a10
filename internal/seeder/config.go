// Package seeder fills a running pelada service with a synthetic roster over
// HTTP, draws teams and checks the draw against the roster it created.
package seeder

import "time"

// Config holds configuration for a seeding run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Players     int           // Number of players to register
	Goalkeepers int           // Number of registered players to flag as goalkeeper
	Absent      int           // Number of registered players to mark absent
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	Seed        string        // Draw seed; empty for a random draw
	Replay      bool          // Send every add twice with the same Idempotency-Key
	OutputFile  string        // Optional YAML file receiving the roster and the draw
}

// Stats holds run statistics.
type Stats struct {
	PlayersSubmitted   int
	PlayersCreated     int
	PlayersReplayed    int
	PlayersFailed      int
	GoalkeepersFlagged int
	GoalkeepersRefused int
	MarkedAbsent       int
	TeamA              int
	TeamB              int
	Reserves           int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}

// Defaults used when a Config field is left zero.
const (
	DefaultWorkers = 4
	DefaultTimeout = 10 * time.Second

	workerChannelMultiplier = 2
	filePermission          = 0o600
	directoryPermission     = 0o750
)
