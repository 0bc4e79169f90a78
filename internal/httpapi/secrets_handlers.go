package httpapi

import (
	"net/http"
	"sync/atomic"

	"jobagent-engine/internal/config"
	"jobagent-engine/internal/secrets"
)

type SecretsHandler struct {
	CfgVal  *atomic.Value // stores config.Config
	Keyring secrets.Store
}

type setTokenReq struct {
	Token string `json:"token"`
}

// SetEnrichmentToken stores the bearer token for the configured enrichment
// deployment in the OS keychain. It takes effect for sessions started
// after the engine restarts.
func (h SecretsHandler) SetEnrichmentToken(w http.ResponseWriter, r *http.Request) {
	var req setTokenReq
	if !decodeJSON(w, r, &req) {
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	if cfg.Enrichment.ConvexURL == "" {
		WriteError(w, r, http.StatusBadRequest, "no_endpoint", "enrichment.convex_url is not configured")
		return
	}
	if err := secrets.SetEnrichmentToken(h.Keyring, secrets.EnrichmentAccount(cfg.Enrichment.ConvexURL), req.Token); err != nil {
		WriteError(w, r, http.StatusBadRequest, "keyring_error", "failed to store token: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
