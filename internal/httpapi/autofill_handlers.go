package httpapi

import (
	"net/http"
	"sync"
	"time"

	"jobagent-engine/internal/autofill"
	"jobagent-engine/internal/events"
	"jobagent-engine/internal/logging"
	"jobagent-engine/internal/page"
	"jobagent-engine/internal/store"
)

type AutofillHandler struct {
	KV    store.KV
	Hub   *events.Hub
	Pause func() time.Duration
	Log   *logging.Logger
}

type autofillReq struct {
	URL  string `json:"url,omitempty"`
	HTML string `json:"html"`
}

type autofillResp struct {
	Filled  int               `json:"filled"`
	Changes []autofill.Change `json:"changes"`
	HTML    string            `json:"html"`
}

// Fill runs the autofill engine over the posted form with the profile from
// the settings store. Field changes are also published as events.
func (h AutofillHandler) Fill(w http.ResponseWriter, r *http.Request) {
	var req autofillReq
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := page.FromHTML(req.URL, req.HTML)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_html", err.Error())
		return
	}

	settings, err := store.LoadSettings(r.Context(), h.KV)
	if err != nil {
		h.Log.Warn("settings read failed, using defaults", "err", err)
	}

	var (
		mu      sync.Mutex
		changes = []autofill.Change{}
	)
	reqID := RequestIDFrom(r.Context())
	listener := autofill.ListenerFunc(func(c autofill.Change) {
		mu.Lock()
		changes = append(changes, c)
		mu.Unlock()
		if h.Hub != nil {
			h.Hub.Publish(events.MakeEvent(reqID, events.TypeFieldChanged, 1, c))
		}
	})

	n, err := autofill.New(h.Pause(), listener, h.Log).Fill(r.Context(), p, settings.AutofillProfile)
	if err != nil {
		WriteErr(w, r, err, "autofill_failed")
		return
	}

	out, _ := p.HTML()
	writeJSON(w, autofillResp{Filled: n, Changes: changes, HTML: out})
}
