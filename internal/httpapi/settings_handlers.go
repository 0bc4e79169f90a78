package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"jobagent-engine/internal/domain"
	"jobagent-engine/internal/logging"
	"jobagent-engine/internal/store"
)

var validate = validator.New()

type SettingsHandler struct {
	KV  store.KV
	Log *logging.Logger
}

func (h SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := store.LoadSettings(r.Context(), h.KV)
	if err != nil {
		h.Log.Warn("settings read failed, serving defaults", "err", err)
	}
	writeJSON(w, s)
}

// Put replaces the whole settings blob.
func (h SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	// Unknown keys belong to other settings screens and are ignored.
	incoming := domain.DefaultSettings()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&incoming); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	if incoming.AutofillProfile != nil {
		if err := validate.Struct(incoming.AutofillProfile); err != nil {
			WriteError(w, r, http.StatusBadRequest, "invalid_profile", err.Error())
			return
		}
	}
	if incoming.ConvexURL != "" {
		if err := validate.Var(incoming.ConvexURL, "url"); err != nil {
			WriteError(w, r, http.StatusBadRequest, "invalid_settings", "convexUrl must be a URL")
			return
		}
	}

	if err := store.SaveSettings(r.Context(), h.KV, incoming); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	writeJSON(w, incoming)
}
