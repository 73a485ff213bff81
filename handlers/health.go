package handlers

import (
	"context"
	"net/http"
	"time"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

type HealthHandler struct {
	db Pinger
}

// NewHealthHandler takes the event database, or nil when it is not configured.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) Result {
	if h.db == nil {
		return Ok(HealthResponse{Status: "ok"})
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		return Result{
			Error: err,
			Code:  http.StatusServiceUnavailable,
			Body:  HealthResponse{Status: "degraded", Database: "unreachable"},
		}
	}

	return Ok(HealthResponse{Status: "ok", Database: "ok"})
}
