package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrMissingCredential is returned when an operation requires a
	// credential that has not been set. No network call is attempted.
	ErrMissingCredential = errors.New("required credential is not set")

	// ErrEmptyInput is returned when ticket text is empty or whitespace.
	ErrEmptyInput = errors.New("ticket text is empty")

	// ErrMalformedInbox signals that the inbox response matched neither
	// accepted shape. It is non-fatal: callers treat the inbox as empty.
	ErrMalformedInbox = errors.New("inbox response did not match any known shape")
)

// InvalidPayloadError is returned when caller input does not parse as
// JSON. It is raised before any network interaction.
type InvalidPayloadError struct {
	Err error
}

func (e *InvalidPayloadError) Error() string {
	return fmt.Sprintf("payload is not valid JSON: %v", e.Err)
}

func (e *InvalidPayloadError) Unwrap() error { return e.Err }

// SubmissionRejectedError is returned when the ingestion API rejects a
// submission or the transport fails. StatusCode is 0 for transport
// failures (timeout, refusal, DNS).
type SubmissionRejectedError struct {
	StatusCode int
	Detail     string
}

func (e *SubmissionRejectedError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("submission failed: %s", e.Detail)
	}
	return fmt.Sprintf("submission rejected (status %d): %s", e.StatusCode, e.Detail)
}

// FetchFailedError is returned when a read from a remote service fails,
// either with a non-success status or a transport error (StatusCode 0).
type FetchFailedError struct {
	StatusCode int
	Detail     string
}

func (e *FetchFailedError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("fetch failed: %s", e.Detail)
	}
	return fmt.Sprintf("fetch failed (status %d): %s", e.StatusCode, e.Detail)
}

// MalformedVerdictError is returned when the classification service
// response cannot be parsed into the expected two-field verdict. This is
// a hard failure: an unreadable verdict must never default to "not
// urgent", since that would silently suppress a real escalation.
type MalformedVerdictError struct {
	Reason string
}

func (e *MalformedVerdictError) Error() string {
	return fmt.Sprintf("classification verdict is malformed: %s", e.Reason)
}

// responseDetail extracts a human-readable failure detail from an error
// response body. It prefers the conventional {"detail": "..."} field and
// falls back to the HTTP status text.
func responseDetail(statusCode int, body []byte) string {
	var wrapped struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Detail != "" {
		return wrapped.Detail
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 {
		return text
	}
	return http.StatusText(statusCode)
}
