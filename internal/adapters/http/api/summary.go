package api

import (
	"context"
	"net/http"
)

// SummaryDependencies defines the share message source.
type SummaryDependencies interface {
	Summary(ctx context.Context) (string, string, error)
}

// SummaryHandler handles share message requests.
type SummaryHandler struct {
	deps SummaryDependencies
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(deps SummaryDependencies) *SummaryHandler {
	return &SummaryHandler{deps: deps}
}

type summaryResponse struct {
	Text     string `json:"text"`
	ShareURL string `json:"share_url"`
}

// HandleSummary handles GET /summary requests.
func (h *SummaryHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.summary"
	text, link, err := h.deps.Summary(r.Context())
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Text: text, ShareURL: link})
}
