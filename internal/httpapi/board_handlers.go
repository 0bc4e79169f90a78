package httpapi

import (
	"net/http"
	"strings"

	"jobagent-engine/internal/board"
	"jobagent-engine/internal/domain"
)

type BoardHandler struct {
	Board *board.Board
}

func (h BoardHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Board.Entries(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	if entries == nil {
		entries = []domain.JobBoardEntry{}
	}
	writeJSON(w, entries)
}

type addJobReq struct {
	Record      domain.JobRecord          `json:"record"`
	Sponsorship *domain.SponsorshipResult `json:"sponsorship,omitempty"`
}

// Add runs the same dedup as automatic persistence. A duplicate is not an
// error: the response says added=false.
func (h BoardHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addJobReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Record.Company) == "" || strings.TrimSpace(req.Record.Title) == "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_job", "record.company and record.title are required")
		return
	}
	added := h.Board.Add(r.Context(), req.Record, req.Sponsorship)
	writeJSON(w, map[string]any{"added": added})
}
