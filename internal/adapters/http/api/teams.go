package api

import (
	"context"
	"net/http"

	"github.com/okian/pelada/internal/domain/teams"
)

// TeamsDependencies defines the draw operations used by TeamsHandler.
type TeamsDependencies interface {
	BuildTeams(ctx context.Context, seed string) (teams.Result, error)
	CurrentTeams(ctx context.Context) (teams.Result, bool)
}

// TeamsHandler handles team draw requests.
type TeamsHandler struct {
	deps TeamsDependencies
}

// NewTeamsHandler creates a new teams handler.
func NewTeamsHandler(deps TeamsDependencies) *TeamsHandler {
	return &TeamsHandler{deps: deps}
}

// HandleBuild handles POST /teams?seed= requests.
func (h *TeamsHandler) HandleBuild(w http.ResponseWriter, r *http.Request) {
	const op = "api.build_teams"
	result, err := h.deps.BuildTeams(r.Context(), r.URL.Query().Get("seed"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleCurrent handles GET /teams requests.
func (h *TeamsHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	const op = "api.current_teams"
	result, ok := h.deps.CurrentTeams(r.Context())
	if !ok {
		writeError(w, http.StatusNotFound, codeNotFound, NewKind(op, ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, result)
}
