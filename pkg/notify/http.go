package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/feedwire-hq/feedharvest/internal/logger"
)

// httpNotifier POSTs run events to a generic HTTP endpoint.
type httpNotifier struct {
	id      string
	typ     string
	url     string
	method  string
	headers map[string]string
	client  *http.Client
	log     logger.Logger
}

// newHTTPNotifier creates an HTTP sink notifier.
func newHTTPNotifier(_ context.Context, cfg SinkConfig, log logger.Logger) (Notifier, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("notifier %q missing http configuration", cfg.ID)
	}

	return &httpNotifier{
		id:      cfg.ID,
		typ:     cfg.Type,
		url:     cfg.HTTP.URL,
		method:  cfg.HTTP.Method,
		headers: cfg.HTTP.Headers,
		client: &http.Client{
			Timeout: time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
		},
		log: logger.Ensure(log),
	}, nil
}

func (n *httpNotifier) ID() string   { return n.id }
func (n *httpNotifier) Type() string { return n.typ }

// Notify sends the run event as a JSON body to the configured endpoint.
func (n *httpNotifier) Notify(ctx context.Context, evt RunEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal run event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, n.method, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range n.headers {
		req.Header.Set(k, v)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.ErrorObj("http notifier send failed", "notify_http_error", map[string]any{
			"error": err.Error(),
		})
		return fmt.Errorf("post run event: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("http sink returned status %d", resp.StatusCode)
	}

	n.log.DebugObj("http notifier delivered run event", "notify_http_delivery", map[string]any{
		"status": resp.StatusCode,
	})
	return nil
}
