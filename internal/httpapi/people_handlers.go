package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"jobagent-engine/internal/agent"
	"jobagent-engine/internal/logging"
	"jobagent-engine/internal/peoplesearch"
	"jobagent-engine/internal/ratelimit"
	"jobagent-engine/internal/store"
)

type PeopleHandler struct {
	KV       store.KV
	Registry *agent.Registry
	Limiter  *ratelimit.Window
	Log      *logging.Logger
}

type peopleReq struct {
	Company string `json:"company"`
	Role    string `json:"role,omitempty"`
	// Session, when set, searches through that page's rate-limit window.
	Session string `json:"session,omitempty"`
}

func (h PeopleHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req peopleReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Company == "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_search", "company is required")
		return
	}

	searcher, ok := h.searcher(r, req.Session)
	if !ok {
		WriteError(w, r, http.StatusNotFound, "unknown_session", "no session "+req.Session)
		return
	}
	q, err := searcher.Search(req.Company, req.Role)

	var rl *peoplesearch.RateLimitError
	if errors.As(err, &rl) {
		w.Header().Set("Retry-After", retryAfter(rl))
		WriteError(w, r, http.StatusTooManyRequests, "rate_limited", err.Error())
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "search_failed", err.Error())
		return
	}
	writeJSON(w, q)
}

func (h PeopleHandler) searcher(r *http.Request, sessionID string) (*peoplesearch.Searcher, bool) {
	if sessionID != "" {
		if h.Registry == nil {
			return nil, false
		}
		s, ok := h.Registry.Get(sessionID)
		if !ok {
			return nil, false
		}
		return s.People(), true
	}
	settings, _ := store.LoadSettings(r.Context(), h.KV)
	return peoplesearch.NewSearcher(peoplesearch.NewBuilder(settings), h.Limiter, h.Log), true
}

func retryAfter(rl *peoplesearch.RateLimitError) string {
	secs := int((rl.Cooldown + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
