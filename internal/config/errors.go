package config

import "errors"

// Error kinds returned by Load, LoadDotEnv and Validate.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
