package app

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/klokku/calendar-bridge/internal/config"
	"github.com/klokku/calendar-bridge/internal/metrics"
	log "github.com/sirupsen/logrus"
)

const requestIdHeader = "X-Request-Id"

type contextKey string

const requestIdKey contextKey = "requestId"

// RequestId returns the id assigned to the current request, or "".
func RequestId(ctx context.Context) string {
	id, _ := ctx.Value(requestIdKey).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Assign a request id, reusing the caller's when present
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			requestId := req.Header.Get(requestIdHeader)
			if requestId == "" {
				requestId = uuid.NewString()
			}
			w.Header().Set(requestIdHeader, requestId)
			ctx := context.WithValue(req.Context(), requestIdKey, requestId)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})

	// Access log and request metrics
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			started := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, req)

			elapsed := time.Since(started)
			route := req.URL.Path
			if current := mux.CurrentRoute(req); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			if cfg.Metrics.Enabled {
				metrics.ObserveRequest(route, req.Method, recorder.status, elapsed)
			}
			log.WithFields(log.Fields{
				"request_id": RequestId(req.Context()),
				"method":     req.Method,
				"path":       req.URL.Path,
				"status":     recorder.status,
				"duration":   elapsed,
			}).Debug("Handled request")
		})
	})
}
