package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/algosignal/signalhub/internal/services"
)

// respondJSON writes a JSON body with the given status code
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// respondError writes the {success:false, message} envelope
func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// respondServiceError maps service errors onto HTTP statuses: validation
// failures are 400, missing entities 404, anything else is treated as a
// store failure and reported as 500
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
