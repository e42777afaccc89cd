package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"fleetd/internal/directive"
)

func (s *Server) handleAddition(w http.ResponseWriter, r *http.Request) {
	var req AdditionRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := req.directive()
	if err != nil {
		writeValidation(w, err)
		return
	}
	writeOutcome(w, s.exec.Execute(r.Context(), d))
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	var req RestartRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := req.directive()
	if err != nil {
		writeValidation(w, err)
		return
	}
	writeOutcome(w, s.exec.Execute(r.Context(), d))
}

func (s *Server) handleReconfigure(w http.ResponseWriter, r *http.Request) {
	var req ReconfigureRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := req.directive()
	if err != nil {
		writeValidation(w, err)
		return
	}
	writeOutcome(w, s.exec.Execute(r.Context(), d))
}

func (s *Server) handleRegistry(w http.ResponseWriter, _ *http.Request) {
	entries := s.reg.Snapshot()
	out := make([]RegistryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, RegistryEntry{
			Device:    e.Device,
			Container: Container{ID: e.Container.ID, Name: e.Container.Name},
		})
	}
	slices.SortFunc(out, func(a, b RegistryEntry) int {
		return strings.Compare(a.Device.String(), b.Device.String())
	})
	writeJSON(w, http.StatusOK, map[string]any{"entries": out})
}

// decode reads a JSON directive body into v and writes a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var verr *directive.ValidationError
		if errors.As(err, &verr) {
			writeValidation(w, verr)
			return false
		}
		writeBadRequest(w, fmt.Sprintf("decode request body: %v", err))
		return false
	}
	return true
}

func writeValidation(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
}
