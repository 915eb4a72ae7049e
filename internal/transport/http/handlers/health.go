package http_handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
)

// Pinger is anything whose liveness gates readiness (the Redis client
// satisfies it).
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    *sql.DB
	cache Pinger
}

func NewHealthHandler(db *sql.DB, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Healthz handles GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz handles GET /readyz. The database is required; the cache is
// best-effort and reported but never fails readiness.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			writeHealth(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  "database unavailable",
			})
			return
		}
	}

	body := map[string]string{"status": "ready"}
	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			body["cache"] = "degraded"
		}
	}
	writeHealth(w, http.StatusOK, body)
}

func writeHealth(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
