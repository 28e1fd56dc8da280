// Package triage implements the classify-then-escalate workflow: ticket
// text is assessed by the classification service, and a positive verdict
// triggers submission of a derived urgent-ticket event.
package triage

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/relay-events/relay-cli/internal/client"
	"github.com/relay-events/relay-cli/internal/logging"
)

// EscalationEventType tags events derived from urgent tickets.
const EscalationEventType = "jira.ticket.urgent"

// Classifier produces an urgency verdict for ticket text.
type Classifier interface {
	Assess(ctx context.Context, token, text string) (*client.Verdict, error)
}

// Submitter sends an event payload to the ingestion API.
type Submitter interface {
	Submit(ctx context.Context, token string, payload json.RawMessage) (*client.Event, error)
}

// State is the terminal or in-flight state of one triage invocation.
type State string

const (
	StateIdle             State = "idle"
	StateAssessing        State = "assessing"
	StateAssessmentFailed State = "assessment_failed"
	StateNotUrgent        State = "not_urgent"
	StateUrgentPending    State = "urgent_pending"
	StateEscalating       State = "escalating"
	StateEscalated        State = "escalated"
	StateEscalationFailed State = "escalation_failed"
)

// Result captures the outcome of one triage invocation. When State is
// StateEscalationFailed the verdict is still populated: the assessment
// succeeded even though the submission did not.
type Result struct {
	State   State           `json:"state"`
	Verdict *client.Verdict `json:"verdict,omitempty"`
	Event   *client.Event   `json:"event,omitempty"`
	Skipped bool            `json:"skipped"`
}

// Engine coordinates assessment and escalation. It does not serialize
// concurrent invocations; preventing overlapping runs for the same
// ticket is the caller's responsibility.
type Engine struct {
	classifier Classifier
	submitter  Submitter
	logger     *slog.Logger
	now        func() time.Time
}

func New(classifier Classifier, submitter Submitter, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Engine{
		classifier: classifier,
		submitter:  submitter,
		logger:     logger,
		now:        time.Now,
	}
}

// EscalationPayload derives the urgent-ticket event payload from the
// original text and a positive verdict. Pure: the same inputs always
// produce the same payload (modulo the supplied timestamp).
func EscalationPayload(text string, verdict client.Verdict, assessedAt time.Time) (json.RawMessage, error) {
	return json.Marshal(map[string]any{
		"event_type":       EscalationEventType,
		"jira_ticket_text": text,
		"is_urgent":        true,
		"urgency_reason":   verdict.UrgencyReason,
		"assessed_at":      assessedAt.UTC().Format(time.RFC3339),
	})
}

// MaybeEscalate submits a derived urgent-ticket event when the verdict is
// positive. A negative verdict returns skipped=true with zero network
// calls; that is a success, not an error. Submission errors propagate
// unchanged. Escalation is attempted at most once per assessment.
func (e *Engine) MaybeEscalate(ctx context.Context, text string, verdict *client.Verdict, ingestToken string) (*client.Event, bool, error) {
	if !verdict.IsUrgent {
		return nil, true, nil
	}

	payload, err := EscalationPayload(text, *verdict, e.now())
	if err != nil {
		return nil, false, err
	}

	event, err := e.submitter.Submit(ctx, ingestToken, payload)
	if err != nil {
		return nil, false, err
	}

	e.logger.Debug("ticket escalated", logging.EventID(event.EventID))
	return event, false, nil
}

// Run executes the full flow for one invocation: assess, then escalate
// only on a positive verdict. Assessment fully completes before
// escalation is attempted; the data dependency on the verdict enforces
// the ordering. The returned Result always reflects the terminal state,
// including when err is non-nil.
func (e *Engine) Run(ctx context.Context, text, classifyToken, ingestToken string) (*Result, error) {
	result := &Result{State: StateAssessing}

	verdict, err := e.classifier.Assess(ctx, classifyToken, text)
	if err != nil {
		result.State = StateAssessmentFailed
		return result, err
	}
	result.Verdict = verdict

	if !verdict.IsUrgent {
		result.State = StateNotUrgent
		result.Skipped = true
		return result, nil
	}

	result.State = StateEscalating
	event, _, err := e.MaybeEscalate(ctx, text, verdict, ingestToken)
	if err != nil {
		result.State = StateEscalationFailed
		return result, err
	}

	result.State = StateEscalated
	result.Event = event
	return result, nil
}
