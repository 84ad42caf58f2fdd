package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"smartspend/internal/core"
	"smartspend/internal/export"
	"smartspend/internal/log"
	"smartspend/internal/report"
	"smartspend/internal/repository"
	"smartspend/internal/services"
)

// errorResponse is the body of every non-2xx JSON reply.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, core.ErrEmptyTitle),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrNotesTooLong):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, services.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidRange),
		errors.Is(err, report.ErrUnknownPeriod),
		errors.Is(err, export.ErrUnknownType),
		errors.Is(err, core.ErrUnknownCategory):
		return http.StatusUnprocessableEntity
	case errors.Is(err, export.ErrUnsupported):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// writeError replies with the mapped status. Internal errors are logged
// and their detail is not sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		resp.Error = "validation failed"
		resp.Fields = verr.Fields
	}
	if status == http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), "Request failed", err, op, nil)
		resp.Error = http.StatusText(status)
	}
	writeJSON(w, status, resp)
}
