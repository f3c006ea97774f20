package slack

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	slackapi "github.com/slack-go/slack"
)

// Webhook posts to an incoming webhook. The target is fixed by the hook,
// so Send ignores it.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook creates a Webhook publisher
func NewWebhook(url string, timeout time.Duration) (*Webhook, error) {
	if url == "" {
		return nil, fmt.Errorf("SLACK_WEBHOOK_URL environment variable not set")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Webhook{url: url, client: &http.Client{Timeout: timeout}}, nil
}

// Send posts text to the hook
func (w *Webhook) Send(ctx context.Context, _ string, text string) error {
	err := slackapi.PostWebhookCustomHTTPContext(ctx, w.url, w.client, &slackapi.WebhookMessage{Text: text})
	return wrapError("webhook", err)
}

// Message is one captured outbound message
type Message struct {
	Target string `json:"target"`
	Text   string `json:"text"`
}

// Recorder is a Publisher that keeps messages instead of sending them.
// Used for dry runs and previews.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// Send records the message
func (r *Recorder) Send(_ context.Context, target, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Target: target, Text: text})
	return nil
}

// Messages returns a copy of what was recorded
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}
