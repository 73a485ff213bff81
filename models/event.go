package models

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID         uuid.UUID  `json:"id"`
	Username   string     `json:"username"`
	Outcome    string     `json:"outcome"`
	Detail     string     `json:"detail,omitempty"`
	ItemCount  int        `json:"itemCount"`
	DurationMs int64      `json:"durationMs"`
	AlertedAt  *time.Time `json:"alertedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type GetEventsResponse struct {
	Events []Event `json:"events"`
	Limit  int     `json:"limit"`
}

type EventStatsResponse struct {
	Since  time.Time      `json:"since"`
	Counts map[string]int `json:"counts"`
}
