package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"jobagent-engine/internal/events"
	"jobagent-engine/internal/logging"
)

type EventsHandler struct {
	Hub *events.Hub
	Log *logging.Logger
}

// ServeSSE streams hub events. ?types=jobAddedToBoard,scanComplete limits the
// stream to those event types; the SSE event name is the event type.
func (h EventsHandler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, r, http.StatusInternalServerError, "stream_unsupported", "Streaming unsupported")
		return
	}

	want := eventTypes(r.URL.Query().Get("types"))
	reqID := RequestIDFrom(r.Context())
	log := h.Log.Component("sse").With("request_id", reqID)

	ch := h.Hub.Subscribe()
	defer h.Hub.Unsubscribe(ch)
	log.Debug("client connected", "types", r.URL.Query().Get("types"))
	defer log.Debug("client disconnected")

	fmt.Fprintf(w, "event: ping\ndata: %s\n\n", events.MakeEvent(reqID, "ping", 1, nil))
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-ch:
			typ := eventType(msg)
			if len(want) > 0 && !want[typ] {
				continue
			}
			if typ == "" {
				typ = "message"
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", typ, msg)
			flusher.Flush()
		}
	}
}

func eventTypes(q string) map[string]bool {
	out := map[string]bool{}
	for _, t := range strings.Split(q, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out[t] = true
		}
	}
	return out
}

func eventType(msg string) string {
	var e struct {
		Type string `json:"type"`
	}
	_ = json.Unmarshal([]byte(msg), &e)
	return e.Type
}
