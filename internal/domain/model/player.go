// Package model contains domain models passed between layers.
package model

// Player is a roster entry for the weekly game.
type Player struct {
	// ID is opaque and unique within a roster.
	ID string `json:"id" yaml:"id"`

	// Name is the display name.
	Name string `json:"name" yaml:"name"`

	// Present marks the player as confirmed for the current session.
	Present bool `json:"present" yaml:"present"`

	// AmountPaid is the non-negative amount the player paid for this session.
	AmountPaid float64 `json:"amount_paid" yaml:"amount_paid"`

	// Goalkeeper marks the player as a goalkeeper candidate (at most one per team).
	Goalkeeper bool `json:"goalkeeper" yaml:"goalkeeper"`
}

// Paid reports whether the player has paid anything for this session.
func (p Player) Paid() bool {
	return p.AmountPaid > 0
}

// Status is the payment/presence state shown in roster listings.
type Status string

// Player statuses.
const (
	StatusAbsent  Status = "absent"
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// Status derives the player's presence/payment state.
func (p Player) Status() Status {
	switch {
	case !p.Present:
		return StatusAbsent
	case p.Paid():
		return StatusPaid
	default:
		return StatusPending
	}
}
