package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/relay-events/relay-cli/internal/logging"
)

// EventStatus is the server-owned delivery status of a submitted event.
type EventStatus string

const (
	StatusPending   EventStatus = "pending"
	StatusDelivered EventStatus = "delivered"
	StatusFailed    EventStatus = "failed"
	StatusUnknown   EventStatus = "unknown"
)

// UnmarshalJSON normalizes unrecognized or non-string status values to
// StatusUnknown rather than failing the whole event decode.
func (s *EventStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		*s = StatusUnknown
		return nil
	}
	switch EventStatus(raw) {
	case StatusPending, StatusDelivered, StatusFailed:
		*s = EventStatus(raw)
	default:
		*s = StatusUnknown
	}
	return nil
}

// Event is a server-created record of a submitted event. The client only
// consumes these; it never constructs one except by decoding a response.
type Event struct {
	EventID   string          `json:"event_id"`
	Status    EventStatus     `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// ParsePayload validates raw text as JSON and returns it as a payload.
// Malformed text fails before any network interaction.
func ParsePayload(raw string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, &InvalidPayloadError{Err: errors.New("input is empty")}
	}
	var probe any
	if err := json.Unmarshal([]byte(trimmed), &probe); err != nil {
		return nil, &InvalidPayloadError{Err: err}
	}
	return json.RawMessage(trimmed), nil
}

// IngestClient talks to the event ingestion API.
type IngestClient struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewIngestClient(baseURL string, logger *slog.Logger) *IngestClient {
	if logger == nil {
		logger = logging.Nop()
	}
	return &IngestClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// Submit sends one event payload and parses the acknowledgment. There is
// no automatic retry; a failed submission is surfaced once and the caller
// decides whether to resubmit.
func (c *IngestClient) Submit(ctx context.Context, token string, payload json.RawMessage) (*Event, error) {
	if token == "" {
		return nil, ErrMissingCredential
	}
	if !json.Valid(payload) {
		return nil, &InvalidPayloadError{Err: errors.New("payload bytes are not valid JSON")}
	}

	body, err := json.Marshal(map[string]json.RawMessage{"payload": payload})
	if err != nil {
		return nil, &InvalidPayloadError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/events", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &SubmissionRejectedError{StatusCode: 0, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &SubmissionRejectedError{
			StatusCode: resp.StatusCode,
			Detail:     responseDetail(resp.StatusCode, respBody),
		}
	}

	var ack Event
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return nil, &SubmissionRejectedError{
			StatusCode: resp.StatusCode,
			Detail:     fmt.Sprintf("acknowledgment was not valid JSON: %v", err),
		}
	}
	if ack.EventID == "" {
		return nil, &SubmissionRejectedError{
			StatusCode: resp.StatusCode,
			Detail:     "acknowledgment missing event_id",
		}
	}
	if ack.Status == "" {
		ack.Status = StatusUnknown
	}

	c.logger.Debug("event submitted",
		slog.String("request_id", requestID),
		logging.EventID(ack.EventID),
		logging.Status(string(ack.Status)),
		logging.Duration(time.Since(start).Milliseconds()),
	)
	return &ack, nil
}

// FetchInbox retrieves the events visible to the given credential. The
// server may return either a bare array or an object wrapping the array
// under "events"; both normalize to the same ordered sequence, which is
// returned in server order without re-sorting.
func (c *IngestClient) FetchInbox(ctx context.Context, token string) ([]Event, error) {
	if token == "" {
		return nil, ErrMissingCredential
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/inbox", http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchFailedError{StatusCode: 0, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &FetchFailedError{
			StatusCode: resp.StatusCode,
			Detail:     responseDetail(resp.StatusCode, respBody),
		}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchFailedError{StatusCode: resp.StatusCode, Detail: err.Error()}
	}

	events, err := decodeInbox(respBody)
	if err != nil {
		// Malformed body degrades to an empty inbox; the sentinel lets
		// callers distinguish this from a transport failure.
		return []Event{}, err
	}
	c.logger.Debug("inbox fetched", slog.Int("count", len(events)))
	return events, nil
}

// Health probes the ingestion API liveness endpoint.
func (c *IngestClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &FetchFailedError{StatusCode: 0, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &FetchFailedError{StatusCode: resp.StatusCode, Detail: http.StatusText(resp.StatusCode)}
	}
	return nil
}

// decodeInbox resolves the union of accepted inbox shapes once, at the
// boundary. Absent or unrecognized statuses come back as unknown.
func decodeInbox(body []byte) ([]Event, error) {
	var bare []Event
	if err := json.Unmarshal(body, &bare); err == nil {
		return normalizeEvents(bare), nil
	}

	var wrapped struct {
		Events []Event `json:"events"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Events != nil {
		return normalizeEvents(wrapped.Events), nil
	}

	return nil, ErrMalformedInbox
}

func normalizeEvents(events []Event) []Event {
	for i := range events {
		if events[i].Status == "" {
			events[i].Status = StatusUnknown
		}
	}
	if events == nil {
		events = []Event{}
	}
	return events
}
