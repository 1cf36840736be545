package api

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthHandler responds to health check requests
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "OK",
		"service":   "Copy Trading Signal Hub",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
