// Package web holds shared request/response helpers for the JSON API.
package web

import (
	"log"
	"net/http"

	json "github.com/goccy/go-json"
)

// RespondJSON writes a JSON response with the given status
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// ErrorResponse sends a JSON error response
func ErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	log.Printf("Error: %s (status %d)", message, statusCode)
	RespondJSON(w, statusCode, map[string]string{"error": message})
}

// DecodeJSON decodes a request body, rejecting anything but JSON-shaped
// input. The caller reports the error to the client.
func DecodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
