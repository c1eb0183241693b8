package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/transfa/corebank/internal/domainerr"
	"github.com/transfa/corebank/internal/pipeline"
)

// writeJSON is the standard response helper every handler funnels through.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

// errorResponse is the wire shape for a failed Result.
type errorResponse struct {
	Error      string                `json:"error"`
	Violations []pipeline.Violation `json:"violations,omitempty"`
}

// statusForKind maps the abstract error kinds to HTTP status codes.
func statusForKind(kind domainerr.Kind) int {
	switch kind {
	case domainerr.KindValidation, domainerr.KindWithdrawalLimit:
		return http.StatusUnprocessableEntity
	case domainerr.KindNotFound:
		return http.StatusNotFound
	case domainerr.KindInsufficientFunds:
		return http.StatusConflict
	case domainerr.KindConflict:
		return http.StatusConflict
	case domainerr.KindInvalidOperation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeResult maps a pipeline.Result to an HTTP response: violations become
// 422 with the full violation list, a domain error maps by kind, success
// writes the payload with successStatus.
func writeResult(w http.ResponseWriter, successStatus int, result pipeline.Result) {
	if len(result.Violations) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Violations: result.Violations})
		return
	}
	if result.Err != nil {
		writeJSON(w, statusForKind(domainerr.KindOf(result.Err)), errorResponse{Error: result.Err.Error()})
		return
	}
	writeJSON(w, successStatus, result.Payload)
}
