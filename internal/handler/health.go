package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/musicagent/musicagent/internal/handler/dto"
	"github.com/musicagent/musicagent/internal/metrics"
)

// HealthChecker defines an interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	db      HealthChecker
	cache   HealthChecker
	metrics metrics.Recorder
}

// NewHealthHandler creates a new HealthHandler.
// Pass nil for db or cache if they are not configured.
func NewHealthHandler(db, cache HealthChecker, recorder metrics.Recorder) *HealthHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &HealthHandler{
		db:      db,
		cache:   cache,
		metrics: recorder,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health is a liveness probe endpoint.
// It returns 200 if the server process is running; no dependency checks.
//
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status: "ok",
	}
	writeJSON(w, http.StatusOK, response)
}

// Readyz is a readiness probe endpoint.
// It checks all dependencies and returns 200 only if all are healthy.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	healthy := true

	// Check MongoDB
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			checks["mongodb"] = "error: " + err.Error()
			healthy = false
		} else {
			checks["mongodb"] = "ok"
		}
	} else {
		checks["mongodb"] = "not configured"
	}

	// Check Redis
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			checks["redis"] = "error: " + err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	} else {
		checks["redis"] = "not configured"
	}

	status := "ok"
	statusCode := http.StatusOK
	if !healthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status: status,
		Checks: checks,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// DBPing confirms the database connection with a round trip.
//
// GET /users/db-ping
func (h *HealthHandler) DBPing(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.db == nil {
		h.metrics.IncDBPing(false)
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{
			Error: "Database not configured",
			Code:  "DB_UNAVAILABLE",
		})
		return
	}

	if err := h.db.Ping(ctx); err != nil {
		h.metrics.IncDBPing(false)
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{
			Error: "Database unreachable: " + err.Error(),
			Code:  "DB_UNAVAILABLE",
		})
		return
	}

	h.metrics.IncDBPing(true)
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
