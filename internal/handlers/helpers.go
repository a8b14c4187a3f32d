package handlers

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// WriteValidationError writes a 422 response with per-field violation
// details.
func WriteValidationError(w http.ResponseWriter, message string, details []string) error {
	return WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
		"status": "error",
		"error":  message,
		"errors": details,
	})
}
