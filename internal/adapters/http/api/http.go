// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/pelada/internal/domain/model"
	"github.com/okian/pelada/internal/domain/teams"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Players(ctx context.Context) ([]model.Player, error)
	AddPlayer(ctx context.Context, name, idempotencyKey string) (model.Player, bool, error)
	RemovePlayer(ctx context.Context, id string) error
	TogglePresence(ctx context.Context, id string) (model.Player, error)
	ToggleGoalkeeper(ctx context.Context, id string) (model.Player, error)
	SetPayment(ctx context.Context, id string, amount float64) (model.Player, error)
	MinConfirmed() int

	BuildTeams(ctx context.Context, seed string) (teams.Result, error)
	CurrentTeams(ctx context.Context) (teams.Result, bool)

	Summary(ctx context.Context) (string, string, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	playersHandler *PlayersHandler
	teamsHandler   *TeamsHandler
	summaryHandler *SummaryHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(nil),
		statsHandler:   NewStatsHandler(statsProvider),
		playersHandler: NewPlayersHandler(deps),
		teamsHandler:   NewTeamsHandler(deps),
		summaryHandler: NewSummaryHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /players", MetricsMiddleware(s.playersHandler.HandleList, "players"))
	mux.HandleFunc("POST /players", MetricsMiddleware(s.playersHandler.HandleAdd, "players"))
	mux.HandleFunc("DELETE /players/{id}", MetricsMiddleware(s.playersHandler.HandleRemove, "player"))
	mux.HandleFunc("POST /players/{id}/presence", MetricsMiddleware(s.playersHandler.HandleTogglePresence, "presence"))
	mux.HandleFunc("POST /players/{id}/goalkeeper", MetricsMiddleware(s.playersHandler.HandleToggleGoalkeeper, "goalkeeper"))
	mux.HandleFunc("PUT /players/{id}/payment", MetricsMiddleware(s.playersHandler.HandleSetPayment, "payment"))

	mux.HandleFunc("POST /teams", MetricsMiddleware(s.teamsHandler.HandleBuild, "teams"))
	mux.HandleFunc("GET /teams", MetricsMiddleware(s.teamsHandler.HandleCurrent, "teams"))

	mux.HandleFunc("GET /summary", MetricsMiddleware(s.summaryHandler.HandleSummary, "summary"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	recordCode(w, code)
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err to its status and envelope code.
func writeFailure(w http.ResponseWriter, op string, err error) {
	status, code, _ := classify(err)
	writeError(w, status, code, Wrap(op, err))
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
