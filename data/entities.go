package data

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisEvent is one analysis outcome. Report content is never stored.
type AnalysisEvent struct {
	ID         uuid.UUID  `db:"id"`
	Username   string     `db:"username"`
	Outcome    string     `db:"outcome"`
	Detail     string     `db:"detail"`
	ItemCount  int        `db:"item_count"`
	DurationMs int64      `db:"duration_ms"`
	AlertedAt  *time.Time `db:"alerted_at"`
	CreatedAt  time.Time  `db:"created_at"`
}

type OutcomeCount struct {
	Outcome string `db:"outcome"`
	Count   int    `db:"count"`
}
