package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/klokku/calendar-bridge/internal/config"
	"github.com/klokku/calendar-bridge/internal/metrics"
	"github.com/klokku/calendar-bridge/internal/rest"
)

type healthResponse struct {
	Status string `json:"status"`
}

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Events
	r.HandleFunc("/events", deps.EventHandler.ListEvents).Methods("GET")
	r.HandleFunc("/events", deps.EventHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/events.ics", deps.EventHandler.ListEventsICal).Methods("GET")

	// Operations
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		rest.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}).Methods("GET")
	if cfg.Metrics.Enabled {
		r.Handle("/metrics", metrics.Handler()).Methods("GET")
	}
}
