package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"conceptcraft/internal/wizard"
	"conceptcraft/pkg/logger"
)

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Sugar.Errorf("Failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondStepError maps the wizard error taxonomy onto HTTP statuses:
// missing fields are the user's problem, phase conflicts and double submits
// are conflicts, anything else is a storage fault.
func respondStepError(w http.ResponseWriter, err error) {
	var validation wizard.ValidationError
	var transition wizard.InvalidTransitionError
	switch {
	case errors.As(err, &validation):
		respondError(w, http.StatusBadRequest, validation.Error())
	case errors.As(err, &transition):
		respondError(w, http.StatusConflict, transition.Error())
	case errors.Is(err, wizard.ErrNotAvailable):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, wizard.ErrGenerationInFlight):
		respondError(w, http.StatusConflict, err.Error())
	default:
		logger.Sugar.Errorf("Step operation failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}
