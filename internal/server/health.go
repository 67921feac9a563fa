package server

import (
	"encoding/json"
	"net/http"

	"github.com/gaspardpetit/tasksplit/internal/serverstate"
)

// HealthHandler reports 200 when the server is ready and 503 otherwise.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if serverstate.IsReady() {
			_, _ = w.Write([]byte("ok"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(serverstate.Snapshot())
	}
}
