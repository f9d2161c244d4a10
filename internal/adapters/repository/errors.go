package repository

import "errors"

// Sentinel kinds for roster store errors.
var (
	ErrNotFound      = errors.New("player not found")
	ErrUnknownDriver = errors.New("unknown store driver")
)
