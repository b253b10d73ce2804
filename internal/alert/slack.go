package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/phrazzld/gatehouse/internal/redact"
)

const unknownErrorMessage = "Unknown error"

// SlackSender posts alerts to a Slack incoming webhook.
type SlackSender struct {
	webhookURL string
	client     *http.Client
}

// NewSlackSender creates a sender for webhookURL. A nil client uses http.DefaultClient;
// the per-alert deadline comes from the context passed to Send.
func NewSlackSender(webhookURL string, client *http.Client) *SlackSender {
	if client == nil {
		client = http.DefaultClient
	}
	return &SlackSender{webhookURL: webhookURL, client: client}
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackMessage struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

// buildSlackMessage renders a as a Block Kit message: a header, a section with
// status, name, method and URL, then the message in a code block.
func buildSlackMessage(a Alert) slackMessage {
	name := a.ErrorName
	if name == "" {
		name = "Error"
	}
	message := redact.String(a.Message)
	if message == "" {
		message = unknownErrorMessage
	}

	fields := []slackText{
		{Type: "mrkdwn", Text: "*Status Code:*\n" + strconv.Itoa(a.StatusCode)},
		{Type: "mrkdwn", Text: "*Error Name:*\n" + name},
		{Type: "mrkdwn", Text: "*Method:*\n" + a.Method},
		{Type: "mrkdwn", Text: "*URL:*\n" + a.URL},
	}
	if a.TraceID != "" {
		fields = append(fields, slackText{Type: "mrkdwn", Text: "*Trace ID:*\n" + a.TraceID})
	}

	return slackMessage{
		Text: "🚨 *API Error*",
		Blocks: []slackBlock{
			{Type: "header", Text: &slackText{Type: "plain_text", Text: "🚨 API Error"}},
			{Type: "section", Fields: fields},
			{Type: "section", Text: &slackText{Type: "mrkdwn", Text: "*Error Message:*\n```" + message + "```"}},
		},
	}
}

// Send posts a to the webhook. Any non-2xx response is an error.
func (s *SlackSender) Send(ctx context.Context, a Alert) error {
	body, err := json.Marshal(buildSlackMessage(a))
	if err != nil {
		return fmt.Errorf("failed to encode slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post slack message: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}
