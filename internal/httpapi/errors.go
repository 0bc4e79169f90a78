package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"jobagent-engine/internal/agent"
	"jobagent-engine/internal/autofill"
	"jobagent-engine/internal/peoplesearch"
)

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}

// WriteErr writes an engine error, mapping the known sentinels to their
// status and code. Anything else is a 500 with fallbackCode.
func WriteErr(w http.ResponseWriter, r *http.Request, err error, fallbackCode string) {
	status, code := errorStatus(err)
	if code == "" {
		code = fallbackCode
	}
	WriteError(w, r, status, code, err.Error())
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, agent.ErrNoJobsFound):
		return http.StatusUnprocessableEntity, "no_jobs_found"
	case errors.Is(err, agent.ErrUnknownCard):
		return http.StatusNotFound, "unknown_card"
	case errors.Is(err, autofill.ErrNoProfileConfigured):
		return http.StatusConflict, "no_profile"
	case errors.Is(err, autofill.ErrNoCompatibleFields):
		return http.StatusUnprocessableEntity, "no_compatible_fields"
	case errors.Is(err, peoplesearch.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	default:
		return http.StatusInternalServerError, ""
	}
}
