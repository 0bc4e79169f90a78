package httpapi

import (
	"net/http"

	"jobagent-engine/internal/agent"
)

type SessionsHandler struct {
	Registry *agent.Registry
}

// Add is the add-to-board button: key is the card's data-jobagent-add value
// in the HTML returned by POST /scan.
func (h SessionsHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, key := r.PathValue("id"), r.PathValue("key")
	s, ok := h.Registry.Get(id)
	if !ok {
		WriteError(w, r, http.StatusNotFound, "unknown_session", "no session "+id)
		return
	}

	added, err := s.AddFromAffordance(r.Context(), key)
	if err != nil {
		WriteErr(w, r, err, "board_error")
		return
	}
	writeJSON(w, map[string]any{"added": added})
}
