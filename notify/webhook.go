package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	sfhttp "github.com/randalmurphal/storyflow/http"
)

// WebhookNotifier posts events as JSON to an HTTP endpoint.
type WebhookNotifier struct {
	URL    string
	client *sfhttp.Client
}

// NewWebhookNotifier creates a webhook notifier. headers are sent with
// every request.
func NewWebhookNotifier(url string, headers map[string]string) *WebhookNotifier {
	return &WebhookNotifier{
		URL: url,
		client: sfhttp.NewClient(sfhttp.ClientConfig{
			BaseURL:     url,
			ServiceName: "webhook",
			MaxRetries:  2,
			RetryWait:   500 * time.Millisecond,
			BeforeRequest: func(req *http.Request) {
				for k, v := range headers {
					req.Header.Set(k, v)
				}
			},
		}),
	}
}

// Notify implements Notifier.
func (n *WebhookNotifier) Notify(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := n.client.Post(ctx, "", event, nil); err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	return nil
}
