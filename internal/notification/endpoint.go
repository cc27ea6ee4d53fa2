package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// EndpointDispatcher delivers notifications through the tenant's email
// endpoint, which accepts a JSON envelope and handles templating-free
// delivery on its side.
type EndpointDispatcher struct {
	url    string
	client *http.Client
}

// NewEndpointDispatcher creates a dispatcher posting to the given URL.
func NewEndpointDispatcher(url string) *EndpointDispatcher {
	return &EndpointDispatcher{
		url:    url,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type endpointEnvelope struct {
	UserEmail     string   `json:"user_email"`
	Subject       string   `json:"subject"`
	EmailContents string   `json:"email_contents"`
	FromEmail     string   `json:"from_email"`
	CCEmails      []string `json:"cc_emails,omitempty"`
	BCCEmails     []string `json:"bcc_emails,omitempty"`
}

func (d *EndpointDispatcher) Dispatch(ctx context.Context, msg Message) error {
	body, err := json.Marshal(endpointEnvelope{
		UserEmail:     msg.To,
		Subject:       msg.Subject,
		EmailContents: msg.HTML,
		FromEmail:     msg.From,
		CCEmails:      msg.CC,
		BCCEmails:     msg.BCC,
	})
	if err != nil {
		return fmt.Errorf("notify encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notify endpoint returned %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}
