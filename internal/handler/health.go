package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger is anything that can confirm its backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandleRoot is the API banner.
//
// HTTP: GET /
func HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Brain Bank API",
		"status":  "success",
	})
}

// HandleHealth reports 200 when the store answers a ping within two
// seconds and 503 otherwise. Meant for load balancers and container probes.
//
// HTTP: GET /healthz
func HandleHealth(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, Envelope{Message: "database unavailable", Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "ok"})
	}
}
