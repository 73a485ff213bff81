package main

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kova98/userlens.api/data"
	"github.com/kova98/userlens.api/models"
)

type fakeAlertStore struct {
	events      []data.AnalysisEvent
	gotOutcomes []string
	marked      []uuid.UUID
}

func (f *fakeAlertStore) GetUnalerted(outcomes []string) ([]data.AnalysisEvent, error) {
	f.gotOutcomes = outcomes
	return f.events, nil
}

func (f *fakeAlertStore) MarkAlerted(ids []uuid.UUID, _ time.Time) error {
	f.marked = append(f.marked, ids...)
	return nil
}

type fakeAlertMailer struct {
	sent    []models.Email
	sendErr error
}

func (f *fakeAlertMailer) AlertDigestEmail(email string, events []data.AnalysisEvent) (models.Email, error) {
	return models.Email{To: email, Subject: "digest"}, nil
}

func (f *fakeAlertMailer) Send(mail models.Email) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, mail)
	return nil
}

func TestAlertOperators_SendsDigestAndMarks(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	store := &fakeAlertStore{events: []data.AnalysisEvent{{ID: ids[0], Outcome: "unauthorized"}, {ID: ids[1], Outcome: "unavailable"}}}
	mailer := &fakeAlertMailer{}
	n := NewNotifier(mailer, store, "ops@example.com")

	require.NoError(t, n.alertOperators())

	assert.Equal(t, []string{"unavailable", "unauthorized"}, store.gotOutcomes)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ops@example.com", mailer.sent[0].To)
	assert.Equal(t, ids, store.marked)
}

func TestAlertOperators_NothingToSend(t *testing.T) {
	store := &fakeAlertStore{}
	mailer := &fakeAlertMailer{}

	require.NoError(t, NewNotifier(mailer, store, "ops@example.com").alertOperators())

	assert.Empty(t, mailer.sent)
	assert.Empty(t, store.marked)
}

func TestAlertOperators_SendFailureKeepsEventsUnalerted(t *testing.T) {
	store := &fakeAlertStore{events: []data.AnalysisEvent{{ID: uuid.New(), Outcome: "unavailable"}}}
	mailer := &fakeAlertMailer{sendErr: errors.New("smtp down")}

	err := NewNotifier(mailer, store, "ops@example.com").alertOperators()

	assert.ErrorContains(t, err, "smtp down")
	assert.Empty(t, store.marked)
}
