package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/pelada/internal/domain/model"
	"github.com/okian/pelada/internal/domain/roster"
)

// IdempotencyKeyHeader lets clients retry POST /players safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// PlayerDependencies defines the roster operations used by PlayersHandler.
type PlayerDependencies interface {
	Players(ctx context.Context) ([]model.Player, error)
	AddPlayer(ctx context.Context, name, idempotencyKey string) (model.Player, bool, error)
	RemovePlayer(ctx context.Context, id string) error
	TogglePresence(ctx context.Context, id string) (model.Player, error)
	ToggleGoalkeeper(ctx context.Context, id string) (model.Player, error)
	SetPayment(ctx context.Context, id string, amount float64) (model.Player, error)
	MinConfirmed() int
}

// PlayersHandler handles roster requests.
type PlayersHandler struct {
	deps PlayerDependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayerDependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

type rosterResponse struct {
	Players       []model.Player `json:"players"`
	Confirmed     int            `json:"confirmed"`
	Goalkeepers   int            `json:"goalkeepers"`
	TotalPaid     float64        `json:"total_paid"`
	CanBuildTeams bool           `json:"can_build_teams"`
}

type addPlayerRequest struct {
	Name string `json:"name"`
}

type paymentRequest struct {
	Amount *float64 `json:"amount"`
}

// HandleList handles GET /players requests.
func (h *PlayersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_players"
	players, err := h.deps.Players(r.Context())
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rosterResponse{
		Players:       players,
		Confirmed:     roster.Confirmed(players),
		Goalkeepers:   roster.Goalkeepers(players),
		TotalPaid:     roster.TotalPaid(players),
		CanBuildTeams: roster.CanBuildTeams(players, h.deps.MinConfirmed()),
	})
}

// HandleAdd handles POST /players requests.
func (h *PlayersHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_player"
	var req addPlayerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, WrapKind(op, ErrBadRequest, err))
		return
	}

	p, replayed, err := h.deps.AddPlayer(r.Context(), req.Name, r.Header.Get(IdempotencyKeyHeader))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	if replayed {
		writeJSON(w, http.StatusOK, p)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleRemove handles DELETE /players/{id} requests.
func (h *PlayersHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	const op = "api.remove_player"
	if err := h.deps.RemovePlayer(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleTogglePresence handles POST /players/{id}/presence requests.
func (h *PlayersHandler) HandleTogglePresence(w http.ResponseWriter, r *http.Request) {
	const op = "api.toggle_presence"
	p, err := h.deps.TogglePresence(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleToggleGoalkeeper handles POST /players/{id}/goalkeeper requests.
func (h *PlayersHandler) HandleToggleGoalkeeper(w http.ResponseWriter, r *http.Request) {
	const op = "api.toggle_goalkeeper"
	p, err := h.deps.ToggleGoalkeeper(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleSetPayment handles PUT /players/{id}/payment requests.
func (h *PlayersHandler) HandleSetPayment(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_payment"
	var req paymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Amount == nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, WrapKind(op, ErrBadRequest, errors.New("missing amount")))
		return
	}

	p, err := h.deps.SetPayment(r.Context(), r.PathValue("id"), *req.Amount)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
