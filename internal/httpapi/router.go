package httpapi

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"jobagent-engine/internal/agent"
	"jobagent-engine/internal/config"
)

// NewMux returns the raw mux so main() can wrap it with middleware.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	if d.ScanStatus == nil {
		d.ScanStatus = &atomic.Value{}
	}
	if d.ScanStatus.Load() == nil {
		d.ScanStatus.Store(ScanStatus{})
	}

	if d.Registry == nil {
		d.Registry = agent.NewRegistry(agent.DefaultRegistrySize)
	}

	hh := HealthHandler{Limiter: d.Limiter}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	// Board
	bh := BoardHandler{Board: d.Board}
	mux.HandleFunc("/board", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  bh.List,
		http.MethodPost: bh.Add,
	}))

	// Scan
	sch := ScanHandler{
		KV:         d.KV,
		Sessions:   d.Sessions,
		Registry:   d.Registry,
		Loader:     d.Loader,
		ScanStatus: d.ScanStatus,
		Log:        d.Log,
		mu:         &sync.Mutex{},
	}
	mux.HandleFunc("/scan", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sch.Run,
	}))
	mux.HandleFunc("/scan/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sch.Status,
	}))

	// Add-to-board affordance on a scanned page
	sesh := SessionsHandler{Registry: d.Registry}
	mux.HandleFunc("/sessions/{id}/add/{key}", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sesh.Add,
	}))

	// Autofill
	ah := AutofillHandler{
		KV:  d.KV,
		Hub: d.Hub,
		Log: d.Log,
		Pause: func() time.Duration {
			return d.CfgVal.Load().(config.Config).FieldPause()
		},
	}
	mux.HandleFunc("/autofill", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ah.Fill,
	}))

	// People search
	ph := PeopleHandler{KV: d.KV, Registry: d.Registry, Limiter: d.Limiter, Log: d.Log}
	mux.HandleFunc("/people", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ph.Search,
	}))

	// Settings blob
	seth := SettingsHandler{KV: d.KV, Log: d.Log}
	mux.HandleFunc("/settings", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: seth.Get,
		http.MethodPut: seth.Put,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal, Keyring: d.Keyring}
	mux.HandleFunc("/api/secrets/enrichment", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetEnrichmentToken,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub, Log: d.Log}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	if d.DB != nil {
		dh := DBHandler{DB: d.DB}
		mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
			http.MethodPost: dh.Checkpoint,
		}))
	}

	return mux
}

// Handler is NewMux wrapped in the standard middleware chain.
func Handler(d Deps) http.Handler {
	return Chain(NewMux(d), RequestID, Recover(d.Log), AccessLog(d.Log), Cors)
}
