package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/domzcondes/opsmon/pkg/logging"
)

// Sink delivers rendered summary text to a chat target
type Sink interface {
	Deliver(ctx context.Context, webhookURL, text string) bool
}

// WebhookSink posts messages to Teams-style incoming webhooks. Deliveries
// are bounded by a per-call timeout and rate-limited so a cycle with many
// messages does not trip webhook throttling. Failures are logged and
// reported as false; the sink never returns an error and never retries.
type WebhookSink struct {
	client  *http.Client
	limiter *rate.Limiter
	log     *logging.Logger
}

// NewWebhookSink creates a sink with the given per-delivery timeout
func NewWebhookSink(timeout time.Duration, log *logging.Logger) *WebhookSink {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &WebhookSink{
		client: &http.Client{Timeout: timeout},
		// Incoming webhooks throttle around 1 req/s per connector
		limiter: rate.NewLimiter(rate.Limit(1), 2),
		log:     log,
	}
}

type webhookMessage struct {
	Text string `json:"text"`
}

// Deliver posts one message to the webhook. Returns false on any failure.
func (s *WebhookSink) Deliver(ctx context.Context, webhookURL, text string) bool {
	if err := s.limiter.Wait(ctx); err != nil {
		s.log.Error("delivery cancelled while rate limited", map[string]interface{}{"error": err.Error()})
		return false
	}

	body, err := json.Marshal(webhookMessage{Text: text})
	if err != nil {
		s.log.Error("failed to encode webhook message", map[string]interface{}{"error": err.Error()})
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		s.log.Error("failed to build webhook request", map[string]interface{}{"error": err.Error()})
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error("webhook post failed", map[string]interface{}{"error": err.Error()})
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.log.Error("webhook post rejected", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(detail),
		})
		return false
	}
	return true
}
