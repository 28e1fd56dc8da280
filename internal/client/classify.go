package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/relay-events/relay-cli/internal/logging"
)

// triageInstruction is the fixed system prompt for urgency assessment.
// The constrained response format keeps the verdict machine-parseable.
const triageInstruction = `You are a support ticket triage assistant. ` +
	`Judge the ticket urgent if it describes a production outage, a critical ` +
	`user-facing bug, a security vulnerability, data loss, or another ` +
	`time-sensitive business-critical issue. Respond with a JSON object ` +
	`containing exactly two fields: "is_urgent" (boolean) and ` +
	`"urgency_reason" (a short justification string). Respond with JSON only.`

// Verdict is the parsed outcome of a classification call. It is
// transient: held only long enough to drive the escalation decision and
// for display, never persisted. The classifier is not deterministic;
// repeated identical inputs may yield different verdicts.
type Verdict struct {
	IsUrgent      bool   `json:"is_urgent"`
	UrgencyReason string `json:"urgency_reason"`
}

// ClassifyClient talks to an OpenAI-compatible chat completions service
// used as the urgency classification oracle.
type ClassifyClient struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *slog.Logger
}

func NewClassifyClient(baseURL, model string, logger *slog.Logger) *ClassifyClient {
	if logger == nil {
		logger = logging.Nop()
	}
	return &ClassifyClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// Chat completions wire types, trimmed to the single-shot non-streaming
// text path this client needs.

type chatRequest struct {
	Model          string              `json:"model"`
	Messages       []chatMessage       `json:"messages"`
	Temperature    float64             `json:"temperature"`
	MaxTokens      int                 `json:"max_tokens,omitempty"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Assess sends the ticket text for classification and parses the verdict.
// Single shot: no retry, no streaming. An unparseable verdict is a hard
// MalformedVerdictError, never a default "not urgent".
func (c *ClassifyClient) Assess(ctx context.Context, token, text string) (*Verdict, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	if token == "" {
		return nil, ErrMissingCredential
	}

	wireReq := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: triageInstruction},
			{Role: "user", Content: text},
		},
		Temperature:    0,
		MaxTokens:      200,
		ResponseFormat: &chatResponseFormat{Type: "json_object"},
	}

	body, err := json.Marshal(wireReq)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
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

	var wireResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&wireResp); err != nil {
		return nil, &MalformedVerdictError{Reason: fmt.Sprintf("response was not valid JSON: %v", err)}
	}
	if len(wireResp.Choices) == 0 {
		return nil, &MalformedVerdictError{Reason: "response contained no choices"}
	}

	verdict, err := parseVerdict(wireResp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("ticket assessed",
		slog.Bool("is_urgent", verdict.IsUrgent),
		logging.Duration(time.Since(start).Milliseconds()),
	)
	return verdict, nil
}

// parseVerdict enforces the two-field verdict contract. Both fields must
// be present; a missing is_urgent is malformed, not "not urgent".
func parseVerdict(content string) (*Verdict, error) {
	if strings.TrimSpace(content) == "" {
		return nil, &MalformedVerdictError{Reason: "verdict content is empty"}
	}

	var raw struct {
		IsUrgent      *bool   `json:"is_urgent"`
		UrgencyReason *string `json:"urgency_reason"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, &MalformedVerdictError{Reason: fmt.Sprintf("verdict content was not valid JSON: %v", err)}
	}
	if raw.IsUrgent == nil {
		return nil, &MalformedVerdictError{Reason: "verdict missing is_urgent"}
	}
	if raw.UrgencyReason == nil {
		return nil, &MalformedVerdictError{Reason: "verdict missing urgency_reason"}
	}

	return &Verdict{IsUrgent: *raw.IsUrgent, UrgencyReason: *raw.UrgencyReason}, nil
}
