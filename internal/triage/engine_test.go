package triage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relay-events/relay-cli/internal/client"
)

type fakeClassifier struct {
	verdict  *client.Verdict
	err      error
	calls    int
	lastText string
}

func (f *fakeClassifier) Assess(ctx context.Context, token, text string) (*client.Verdict, error) {
	f.calls++
	f.lastText = text
	if f.err != nil {
		return nil, f.err
	}
	return f.verdict, nil
}

type fakeSubmitter struct {
	event       *client.Event
	err         error
	calls       int
	lastToken   string
	lastPayload json.RawMessage
}

func (f *fakeSubmitter) Submit(ctx context.Context, token string, payload json.RawMessage) (*client.Event, error) {
	f.calls++
	f.lastToken = token
	f.lastPayload = payload
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func TestRun_UrgentTicketEscalatesOnce(t *testing.T) {
	classifier := &fakeClassifier{
		verdict: &client.Verdict{IsUrgent: true, UrgencyReason: "production outage"},
	}
	submitter := &fakeSubmitter{
		event: &client.Event{EventID: "evt-esc-1", Status: client.StatusPending},
	}

	engine := New(classifier, submitter, nil)
	engine.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	result, err := engine.Run(context.Background(),
		"Production database is down, all customers affected", "classify-key", "ingest-key")

	require.NoError(t, err)
	assert.Equal(t, StateEscalated, result.State)
	assert.False(t, result.Skipped)
	assert.Equal(t, "evt-esc-1", result.Event.EventID)
	assert.Equal(t, 1, classifier.calls)
	assert.Equal(t, 1, submitter.calls, "escalation is attempted exactly once per assessment")
	assert.Equal(t, "ingest-key", submitter.lastToken)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(submitter.lastPayload, &payload))
	assert.Equal(t, "jira.ticket.urgent", payload["event_type"])
	assert.Equal(t, "Production database is down, all customers affected", payload["jira_ticket_text"])
	assert.Equal(t, true, payload["is_urgent"])
	assert.Equal(t, "production outage", payload["urgency_reason"])
	assert.Equal(t, "2025-06-01T12:00:00Z", payload["assessed_at"])
}

func TestRun_NotUrgentSkipsSubmission(t *testing.T) {
	classifier := &fakeClassifier{
		verdict: &client.Verdict{IsUrgent: false, UrgencyReason: "cosmetic"},
	}
	submitter := &fakeSubmitter{}

	engine := New(classifier, submitter, nil)
	result, err := engine.Run(context.Background(), "Typo in footer copyright year", "ck", "ik")

	require.NoError(t, err)
	assert.Equal(t, StateNotUrgent, result.State)
	assert.True(t, result.Skipped)
	assert.Nil(t, result.Event)
	assert.Equal(t, "cosmetic", result.Verdict.UrgencyReason)
	assert.Equal(t, 0, submitter.calls, "a negative verdict makes zero network calls")
}

func TestRun_AssessmentFailed(t *testing.T) {
	classifier := &fakeClassifier{err: &client.MalformedVerdictError{Reason: "verdict missing is_urgent"}}
	submitter := &fakeSubmitter{}

	engine := New(classifier, submitter, nil)
	result, err := engine.Run(context.Background(), "some ticket", "ck", "ik")

	require.Error(t, err)
	var malformed *client.MalformedVerdictError
	assert.ErrorAs(t, err, &malformed)
	assert.Equal(t, StateAssessmentFailed, result.State)
	assert.Nil(t, result.Verdict)
	assert.Equal(t, 0, submitter.calls, "no escalation after a failed assessment")
}

func TestRun_EscalationFailed(t *testing.T) {
	classifier := &fakeClassifier{
		verdict: &client.Verdict{IsUrgent: true, UrgencyReason: "data loss"},
	}
	submitter := &fakeSubmitter{
		err: &client.SubmissionRejectedError{StatusCode: 503, Detail: "unavailable"},
	}

	engine := New(classifier, submitter, nil)
	result, err := engine.Run(context.Background(), "backups are gone", "ck", "ik")

	require.Error(t, err)
	var rejected *client.SubmissionRejectedError
	assert.ErrorAs(t, err, &rejected, "submit errors propagate unchanged")
	assert.Equal(t, StateEscalationFailed, result.State)
	assert.NotNil(t, result.Verdict, "assessment succeeded even though submission failed")
	assert.Equal(t, 1, submitter.calls)
}

func TestRun_EscalationWithoutIngestCredential(t *testing.T) {
	classifier := &fakeClassifier{
		verdict: &client.Verdict{IsUrgent: true, UrgencyReason: "security vulnerability"},
	}
	submitter := &fakeSubmitter{err: client.ErrMissingCredential}

	engine := New(classifier, submitter, nil)
	result, err := engine.Run(context.Background(), "auth bypass found", "ck", "")

	assert.ErrorIs(t, err, client.ErrMissingCredential)
	assert.Equal(t, StateEscalationFailed, result.State)
}

func TestMaybeEscalate_SkippedWhenNotUrgent(t *testing.T) {
	submitter := &fakeSubmitter{}
	engine := New(&fakeClassifier{}, submitter, nil)

	event, skipped, err := engine.MaybeEscalate(context.Background(), "text",
		&client.Verdict{IsUrgent: false, UrgencyReason: "minor"}, "ik")

	require.NoError(t, err)
	assert.True(t, skipped)
	assert.Nil(t, event)
	assert.Equal(t, 0, submitter.calls)
}

func TestMaybeEscalate_PropagatesSubmitError(t *testing.T) {
	boom := errors.New("boom")
	submitter := &fakeSubmitter{err: boom}
	engine := New(&fakeClassifier{}, submitter, nil)

	event, skipped, err := engine.MaybeEscalate(context.Background(), "text",
		&client.Verdict{IsUrgent: true, UrgencyReason: "outage"}, "ik")

	assert.ErrorIs(t, err, boom)
	assert.False(t, skipped)
	assert.Nil(t, event)
}

func TestEscalationPayload(t *testing.T) {
	at := time.Date(2025, 3, 15, 8, 30, 0, 0, time.FixedZone("CET", 3600))

	payload, err := EscalationPayload("login is broken",
		client.Verdict{IsUrgent: true, UrgencyReason: "critical user-facing bug"}, at)
	require.NoError(t, err)
	require.True(t, json.Valid(payload))

	var fields map[string]any
	require.NoError(t, json.Unmarshal(payload, &fields))
	assert.Len(t, fields, 5)
	assert.Equal(t, "jira.ticket.urgent", fields["event_type"])
	assert.Equal(t, "login is broken", fields["jira_ticket_text"])
	assert.Equal(t, true, fields["is_urgent"])
	assert.Equal(t, "critical user-facing bug", fields["urgency_reason"])
	assert.Equal(t, "2025-03-15T07:30:00Z", fields["assessed_at"], "assessed_at is normalized to UTC RFC3339")
}
