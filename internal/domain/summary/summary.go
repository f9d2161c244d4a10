// Package summary renders the roster and the last draw as a chat-friendly
// message, and builds a share link for it.
package summary

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/okian/pelada/internal/domain/model"
	"github.com/okian/pelada/internal/domain/roster"
	"github.com/okian/pelada/internal/domain/teams"
)

// Defaults for rendering.
const (
	DefaultTitle    = "Thursday game (20:00)"
	DefaultCurrency = "R$"
	shareBaseURL    = "https://wa.me/?text="
	separator       = "*------------------------------*"
)

type options struct {
	title    string
	currency string
}

// Option customises Render.
type Option func(*options)

// WithTitle sets the header line.
func WithTitle(title string) Option {
	return func(o *options) {
		if title != "" {
			o.title = title
		}
	}
}

// WithCurrency sets the currency symbol printed before amounts.
func WithCurrency(symbol string) Option {
	return func(o *options) {
		if symbol != "" {
			o.currency = symbol
		}
	}
}

// Render builds the share message for players in roster order. The teams
// section is appended only when draw is non-nil and Team A has players.
func Render(players []model.Player, draw *teams.Result, opts ...Option) string {
	o := options{title: DefaultTitle, currency: DefaultCurrency}
	for _, opt := range opts {
		opt(&o)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n\n", o.title)
	fmt.Fprintf(&b, "*Confirmed:* %d / %d\n", roster.Confirmed(players), len(players))
	fmt.Fprintf(&b, "*Total collected:* %s\n\n", money(o.currency, roster.TotalPaid(players)))
	b.WriteString("*PLAYERS:*\n")

	for _, p := range players {
		keeper := ""
		if p.Goalkeeper {
			keeper = "(Goalkeeper) "
		}
		fmt.Fprintf(&b, "• *%s* %s- %s\n", p.Name, keeper, status(p, o.currency))
	}

	if draw == nil || len(draw.TeamA) == 0 {
		return b.String()
	}

	b.WriteString("\n" + separator + "\n")
	b.WriteString("*RANDOM TEAMS:*\n")
	b.WriteString("\n*TEAM A (Blue):*\n")
	writeTeam(&b, draw.TeamA)
	b.WriteString("\n*TEAM B (Yellow):*\n")
	writeTeam(&b, draw.TeamB)
	if len(draw.Reserves) > 0 {
		fmt.Fprintf(&b, "\n*RESERVES (%d):*\n", len(draw.Reserves))
		writeTeam(&b, draw.Reserves)
	}
	return b.String()
}

// ShareURL returns a wa.me link that opens a chat pre-filled with text.
func ShareURL(text string) string {
	return shareBaseURL + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

func writeTeam(b *strings.Builder, ps []model.Player) {
	for _, p := range ps {
		if p.Goalkeeper {
			fmt.Fprintf(b, "  • %s (G)\n", p.Name)
			continue
		}
		fmt.Fprintf(b, "  • %s\n", p.Name)
	}
}

func status(p model.Player, currency string) string {
	switch p.Status() {
	case model.StatusAbsent:
		return "NOT CONFIRMED"
	case model.StatusPaid:
		return fmt.Sprintf("PAID (%s)", money(currency, p.AmountPaid))
	default:
		return "PAYMENT PENDING"
	}
}

// money formats amounts with two decimals and a decimal comma.
func money(currency string, amount float64) string {
	return currency + " " + strings.Replace(fmt.Sprintf("%.2f", amount), ".", ",", 1)
}
