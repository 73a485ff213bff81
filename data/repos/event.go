package repos

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kova98/userlens.api/data"
)

type EventRepo struct {
	db *sqlx.DB
}

func NewEventRepo(db *sqlx.DB) *EventRepo {
	return &EventRepo{db}
}

// Record stores an event, assigning an ID and timestamp when they are missing.
func (r *EventRepo) Record(event data.AnalysisEvent) (uuid.UUID, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO analysis_events (id, username, outcome, detail, item_count, duration_ms, created_at)
		VALUES (:id, :username, :outcome, :detail, :item_count, :duration_ms, :created_at)`

	if _, err := r.db.NamedExec(query, event); err != nil {
		return uuid.Nil, fmt.Errorf("record event: %w", err)
	}

	return event.ID, nil
}

func (r *EventRepo) Recent(limit int) ([]data.AnalysisEvent, error) {
	events := []data.AnalysisEvent{}
	query := `
		SELECT id, username, outcome, detail, item_count, duration_ms, alerted_at, created_at
		FROM analysis_events
		ORDER BY created_at DESC
		LIMIT $1`

	if err := r.db.Select(&events, query, limit); err != nil {
		return nil, fmt.Errorf("get recent events: %w", err)
	}

	return events, nil
}

func (r *EventRepo) CountsByOutcome(since time.Time) (map[string]int, error) {
	var rows []data.OutcomeCount
	query := `
		SELECT outcome, COUNT(*) AS count
		FROM analysis_events
		WHERE created_at >= $1
		GROUP BY outcome`

	if err := r.db.Select(&rows, query, since); err != nil {
		return nil, fmt.Errorf("count events by outcome: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Outcome] = row.Count
	}

	return counts, nil
}

func (r *EventRepo) GetUnalerted(outcomes []string) ([]data.AnalysisEvent, error) {
	if len(outcomes) == 0 {
		return []data.AnalysisEvent{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, username, outcome, detail, item_count, duration_ms, alerted_at, created_at
		FROM analysis_events
		WHERE alerted_at IS NULL AND outcome IN (?)
		ORDER BY created_at ASC`, outcomes)
	if err != nil {
		return nil, fmt.Errorf("build get unalerted events: %w", err)
	}
	query = r.db.Rebind(query)

	var events []data.AnalysisEvent
	if err := r.db.Select(&events, query, args...); err != nil {
		return nil, fmt.Errorf("get unalerted events: %w", err)
	}

	return events, nil
}

func (r *EventRepo) MarkAlerted(ids []uuid.UUID, alertedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`UPDATE analysis_events SET alerted_at = ? WHERE id IN (?)`, alertedAt, ids)
	if err != nil {
		return fmt.Errorf("build mark alerted: %w", err)
	}
	query = r.db.Rebind(query)

	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("mark alerted: %w", err)
	}

	return nil
}
