// Package slack sends dispatch and SOS notifications to Slack via incoming
// webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/linnemanlabs/unilert/internal/notify"
)

const httpTimeout = 10 * time.Second

// Notifier posts events to a Slack webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

// New creates a new Slack notifier. If webhookURL is empty, Send is a no-op.
func New(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

// Send posts an event to the configured Slack webhook.
// If no webhook URL is configured, it returns nil immediately.
func (n *Notifier) Send(ctx context.Context, ev notify.Event) error {
	if n.webhookURL == "" {
		return nil
	}

	msg := buildMessage(ev)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(ev notify.Event) map[string]any {
	blocks := []map[string]any{
		headerBlock(ev),
		{"type": "divider"},
	}
	if fields := fieldsBlock(ev); fields != nil {
		blocks = append(blocks, fields, map[string]any{"type": "divider"})
	}
	blocks = append(blocks, contextBlock(ev))

	return map[string]any{"blocks": blocks}
}

func headerBlock(ev notify.Event) map[string]any {
	text := fmt.Sprintf("%s %s", kindEmoji(ev), ev.Summary)

	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": text,
		},
	}
}

func fieldsBlock(ev notify.Event) map[string]any {
	if len(ev.Fields) == 0 {
		return nil
	}

	// deterministic field order for rendering and tests
	keys := make([]string, 0, len(ev.Fields))
	for k := range ev.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*%s:* %s", k, ev.Fields[k]),
		})
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func contextBlock(ev notify.Event) map[string]any {
	ts := ev.At
	if ts.IsZero() {
		ts = time.Now()
	}

	elements := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("unilert • %s %s • %s", ev.Kind, ev.EntityID, ts.UTC().Format("2006-01-02 15:04 UTC")),
		},
	}

	return map[string]any{
		"type":     "context",
		"elements": elements,
	}
}

func kindEmoji(ev notify.Event) string {
	switch ev.Kind {
	case notify.KindSOSActive, notify.KindSOSResponded:
		return "\U0001f6a8" // rotating light
	case notify.KindSOSResolved:
		return "\U0001f7e2" // green circle
	case notify.KindDispatch:
		if ev.Severity == "high" {
			return "\U0001f534" // red circle
		}
		return "\U0001f7e1" // yellow circle
	default:
		return "\U0001f514" // bell
	}
}
