package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"jobagent-engine/internal/agent"
	"jobagent-engine/internal/logging"
	"jobagent-engine/internal/page"
	"jobagent-engine/internal/store"
)

type ScanHandler struct {
	KV         store.KV
	Sessions   *agent.Factory
	Registry   *agent.Registry
	Loader     page.Loader
	ScanStatus *atomic.Value // httpapi.ScanStatus
	Log        *logging.Logger

	// mu guards the read-modify-write of ScanStatus.
	mu *sync.Mutex
}

type scanReq struct {
	URL  string `json:"url"`
	HTML string `json:"html,omitempty"`
	// Mode is "incremental" (badges, auto-persist) or "manual" (highlight).
	Mode string `json:"mode,omitempty"`
}

type scanResp struct {
	Session string     `json:"session"`
	Site    string     `json:"site"`
	Pass    agent.Pass `json:"pass"`
	HTML    string     `json:"html"`
}

func (h ScanHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.ScanStatus.Load().(ScanStatus))
}

// Run scans one page given inline or by URL and returns the annotated
// document.
func (h ScanHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req scanReq
	if !decodeJSON(w, r, &req) {
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.HTML == "" && req.URL == "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_scan", "url or html is required")
		return
	}

	ctx := r.Context()
	p, err := h.load(ctx, req)
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, "page_load_failed", err.Error())
		return
	}

	settings, err := store.LoadSettings(ctx, h.KV)
	if err != nil {
		h.Log.Warn("settings read failed, using defaults", "err", err)
	}
	s := h.Sessions.New(p, settings)
	if h.Registry != nil {
		h.Registry.Put(s)
	}

	h.begin(req.URL)
	var pass agent.Pass
	switch req.Mode {
	case "", "incremental":
		pass, err = s.ScanIncremental(ctx)
	case "manual":
		_, pass, err = s.ToggleHighlight(ctx)
	default:
		h.end(agent.Pass{}, errors.New("unknown mode"))
		WriteError(w, r, http.StatusBadRequest, "invalid_scan", "mode must be incremental or manual")
		return
	}
	h.end(pass, err)

	if err != nil {
		WriteErr(w, r, err, "scan_failed")
		return
	}

	out, _ := p.HTML()
	writeJSON(w, scanResp{Session: s.ID, Site: s.Profile().SiteID, Pass: pass, HTML: out})
}

func (h ScanHandler) load(ctx context.Context, req scanReq) (*page.Page, error) {
	if req.HTML != "" {
		return page.FromHTML(req.URL, req.HTML)
	}
	if h.Loader == nil {
		return nil, errors.New("no page loader configured")
	}
	return page.Load(ctx, h.Loader, req.URL)
}

func (h ScanHandler) begin(url string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	st := h.ScanStatus.Load().(ScanStatus)
	st.Running++
	st.LastRunAt = time.Now().Format(time.RFC3339)
	st.LastURL = url
	h.ScanStatus.Store(st)
}

func (h ScanHandler) end(pass agent.Pass, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	st := h.ScanStatus.Load().(ScanStatus)
	st.Running--
	st.LastProcessed = pass.Processed
	st.LastAdded = pass.Added
	if err != nil {
		st.LastError = err.Error()
	} else {
		st.LastError = ""
		st.LastOkAt = time.Now().Format(time.RFC3339)
	}
	h.ScanStatus.Store(st)
}
