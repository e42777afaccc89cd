package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"fleetd/internal/orchestrator"
)

// Error is the body of every non-2xx response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	// Runtime is set when the container runtime rejected a call.
	Runtime *RuntimeError `json:"runtime,omitempty"`
	// Container is set when a directive failed after a container was
	// identified, e.g. an addition left created but unstarted.
	Container *Container `json:"container,omitempty"`
}

// RuntimeError carries the runtime's own classification of a failure.
type RuntimeError struct {
	Op      string `json:"op"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeValidation     = "validation_error"
	ErrCodeNotFound       = "not_found"
	ErrCodeAmbiguousState = "ambiguous_state"
	ErrCodeRuntimeFault   = "runtime_fault"
	ErrCodeForwardFault   = "forward_fault"
	ErrCodeInternal       = "internal_error"
	ErrCodeMethodNotAllow = "method_not_allowed"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{Status: status, Code: code, Message: message})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// outcomeStatus maps a failed outcome to its HTTP status and error code.
func outcomeStatus(kind orchestrator.OutcomeKind) (int, string) {
	switch kind {
	case orchestrator.OutcomeInvalidInput:
		return http.StatusBadRequest, ErrCodeValidation
	case orchestrator.OutcomeNotFound:
		return http.StatusNotFound, ErrCodeNotFound
	case orchestrator.OutcomeAmbiguousState:
		return http.StatusConflict, ErrCodeAmbiguousState
	case orchestrator.OutcomeRuntimeFault:
		return http.StatusBadGateway, ErrCodeRuntimeFault
	case orchestrator.OutcomeForwardFault:
		return http.StatusBadGateway, ErrCodeForwardFault
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}

// writeOutcome renders an orchestrator outcome.
func writeOutcome(w http.ResponseWriter, out orchestrator.Outcome) {
	if out.OK() {
		writeJSON(w, http.StatusOK, newResult(out))
		return
	}

	status, code := outcomeStatus(out.Kind)
	body := Error{Status: status, Code: code}
	if out.Err != nil {
		body.Message = out.Err.Error()
	}
	var fault *orchestrator.Fault
	if errors.As(out.Err, &fault) {
		body.Runtime = &RuntimeError{Op: fault.Op, Code: fault.Code, Message: fault.Message}
	}
	if !out.Container.IsZero() {
		body.Container = &Container{ID: out.Container.ID, Name: out.Container.Name}
	}
	writeJSON(w, status, body)
}
