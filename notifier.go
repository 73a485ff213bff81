package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kova98/userlens.api/data"
	"github.com/kova98/userlens.api/enums"
	"github.com/kova98/userlens.api/models"
)

var alertOutcomes = operationalOutcomes()

func operationalOutcomes() []string {
	var outcomes []string
	for _, o := range enums.Outcomes {
		if o.Operational() {
			outcomes = append(outcomes, string(o))
		}
	}
	return outcomes
}

type alertStore interface {
	GetUnalerted(outcomes []string) ([]data.AnalysisEvent, error)
	MarkAlerted(ids []uuid.UUID, alertedAt time.Time) error
}

type alertMailer interface {
	AlertDigestEmail(email string, events []data.AnalysisEvent) (models.Email, error)
	Send(mail models.Email) error
}

// Notifier emails operators about analyses that failed because of our own
// credentials or the platform being down.
type Notifier struct {
	events   alertStore
	mailer   alertMailer
	to       string
	interval time.Duration
}

func NewNotifier(mailer alertMailer, events alertStore, to string) *Notifier {
	return &Notifier{
		events:   events,
		mailer:   mailer,
		to:       to,
		interval: 1 * time.Minute,
	}
}

func (n *Notifier) Start(ctx context.Context) {
	if err := n.alertOperators(); err != nil {
		slog.Error("alert operators:", "error", err)
	}

	go func() {
		ticker := time.NewTicker(n.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := n.alertOperators(); err != nil {
					slog.Error("alert operators:", "error", err)
				}
			}
		}
	}()
}

func (n *Notifier) alertOperators() error {
	unalerted, err := n.events.GetUnalerted(alertOutcomes)
	if err != nil {
		return errors.Wrap(err, "alert operators: get unalerted events")
	}
	if len(unalerted) == 0 {
		return nil
	}

	digest, err := n.mailer.AlertDigestEmail(n.to, unalerted)
	if err != nil {
		return errors.Wrap(err, "alert operators: create digest email")
	}
	if err := n.mailer.Send(digest); err != nil {
		return errors.Wrap(err, "alert operators: send digest")
	}

	ids := make([]uuid.UUID, 0, len(unalerted))
	for _, e := range unalerted {
		ids = append(ids, e.ID)
	}
	if err := n.events.MarkAlerted(ids, time.Now().UTC()); err != nil {
		return errors.Wrap(err, "alert operators: mark alerted")
	}

	slog.Info("operators alerted", "events", len(ids))
	return nil
}
