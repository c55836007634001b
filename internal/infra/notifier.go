package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Event is the envelope POSTed to the configured webhook when something
// notable happens (presupuesto enviado, factura emitida, lead convertido).
type Event struct {
	Tipo      string         `json:"tipo"`
	RecursoID string         `json:"recurso_id"`
	Payload   map[string]any `json:"payload,omitempty"`
	EmitidoAt string         `json:"emitido_at"` // ISO 8601
}

// Notifier delivers domain events to an external webhook over HTTP.
// A nil Notifier (no WEBHOOK_URL configured) silently drops every event —
// callers never need to branch on configuration.
type Notifier struct {
	webhookURL string
	httpClient *http.Client
}

// NewNotifier returns nil when url is empty.
func NewNotifier(url string) *Notifier {
	if url == "" {
		return nil
	}
	return &Notifier{
		webhookURL: url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify POSTs the event as JSON. Non-2xx responses count as failures so the
// circuit breaker wrapping this call sees them.
func (n *Notifier) Notify(ctx context.Context, ev Event) error {
	if n == nil {
		return nil
	}
	if ev.EmitidoAt == "" {
		ev.EmitidoAt = time.Now().UTC().Format(time.RFC3339)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("notifier: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notifier: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notifier: webhook unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notifier: webhook returned %d", resp.StatusCode)
	}
	return nil
}
