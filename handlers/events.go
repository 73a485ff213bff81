package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kova98/userlens.api/data"
	"github.com/kova98/userlens.api/models"
)

const (
	defaultEventsLimit = 50
	maxEventsLimit     = 500
	defaultStatsWindow = 24 * time.Hour
)

type operatorKey struct{}

// WithOperator stores the authenticated operator on the request context.
func WithOperator(ctx context.Context, op models.Operator) context.Context {
	return context.WithValue(ctx, operatorKey{}, op)
}

func OperatorFrom(ctx context.Context) (models.Operator, bool) {
	op, ok := ctx.Value(operatorKey{}).(models.Operator)
	return op, ok
}

type EventReader interface {
	Recent(limit int) ([]data.AnalysisEvent, error)
	CountsByOutcome(since time.Time) (map[string]int, error)
}

type EventsHandler struct {
	logger *slog.Logger
	repo   EventReader
	now    func() time.Time
}

func NewEventsHandler(logger *slog.Logger, repo EventReader) *EventsHandler {
	return &EventsHandler{logger: logger, repo: repo, now: time.Now}
}

func (h *EventsHandler) GetEvents(w http.ResponseWriter, r *http.Request) Result {
	op, ok := OperatorFrom(r.Context())
	if !ok {
		return Unauthorized("Operator required")
	}
	limit := defaultEventsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxEventsLimit {
			return BadRequest("limit must be between 1 and 500.")
		}
		limit = n
	}

	events, err := h.repo.Recent(limit)
	if err != nil {
		return InternalError(err, "get events")
	}
	h.logger.Info("events read", "operator", op.Name, "operator_id", op.ID, "limit", limit, "count", len(events))

	res := models.GetEventsResponse{
		Events: make([]models.Event, 0, len(events)),
		Limit:  limit,
	}
	for _, e := range events {
		res.Events = append(res.Events, models.Event{
			ID:         e.ID,
			Username:   e.Username,
			Outcome:    e.Outcome,
			Detail:     e.Detail,
			ItemCount:  e.ItemCount,
			DurationMs: e.DurationMs,
			AlertedAt:  e.AlertedAt,
			CreatedAt:  e.CreatedAt,
		})
	}

	return Ok(res)
}

// GetStats counts outcomes since the "since" timestamp (RFC 3339), defaulting to the last day.
func (h *EventsHandler) GetStats(w http.ResponseWriter, r *http.Request) Result {
	op, ok := OperatorFrom(r.Context())
	if !ok {
		return Unauthorized("Operator required")
	}

	since := h.now().UTC().Add(-defaultStatsWindow)
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return BadRequest("since must be an RFC 3339 timestamp.")
		}
		since = t.UTC()
	}

	counts, err := h.repo.CountsByOutcome(since)
	if err != nil {
		return InternalError(err, "count events")
	}
	h.logger.Info("event stats read", "operator", op.Name, "operator_id", op.ID, "since", since)

	return Ok(models.EventStatsResponse{Since: since, Counts: counts})
}
