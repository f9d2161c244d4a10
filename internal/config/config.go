// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - Load failures are wrapped with ErrLoadConfig, validation failures with ErrInvalidConfig.
package config

// Store drivers understood by the repository package.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the roster store: memory, sqlite or postgres.
	StoreDriver string `koanf:"store_driver"`

	// DatabaseURL is the DSN for the sqlite and postgres drivers.
	DatabaseURL string `koanf:"database_url"`

	// DedupeSize bounds the idempotency-key memory. Zero or less is unbounded.
	DedupeSize int `koanf:"dedupe_size"`

	// MinConfirmed is the number of confirmed players needed to draw teams.
	MinConfirmed int `koanf:"min_confirmed"`

	// MaxGoalkeepers caps goalkeeper flags on the roster. Zero disables the cap.
	MaxGoalkeepers int `koanf:"max_goalkeepers"`

	// SummaryTitle and Currency shape the share message.
	SummaryTitle string `koanf:"summary_title"`
	Currency     string `koanf:"currency"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":9080",
		StoreDriver:    DriverMemory,
		DedupeSize:     10_000,
		MinConfirmed:   10,
		MaxGoalkeepers: 3,
		SummaryTitle:   "Thursday game (20:00)",
		Currency:       "R$",
	}
}
