package httpapi

import (
	"net/http"
	"time"

	"jobagent-engine/internal/ratelimit"
	"jobagent-engine/internal/sites"
)

type HealthHandler struct {
	Limiter *ratelimit.Window
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{
		"ok":    true,
		"time":  time.Now().Format(time.RFC3339),
		"sites": sites.Known(),
	}
	if h.Limiter != nil {
		out["rate_limit"] = h.Limiter.Status()
		out["cooldown_ms"] = h.Limiter.Cooldown().Milliseconds()
	}
	writeJSON(w, out)
}
