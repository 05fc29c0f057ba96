package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSinks(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSinksYAML(t *testing.T) {
	path := writeSinks(t, "notifiers.yaml", `
notifiers:
  - id: ops-queue
    type: queue
    queue:
      provider: aws-sqs
      sqs:
        uri: https://sqs.eu-west-1.amazonaws.com/123/harvest
        region: eu-west-1
        access_key_id: AKIA123
        secret_access_key: shh
  - id: webhook
    type: http
    http:
      url: https://hooks.example.org/harvest
  - id: off
    type: http
    enabled: false
    http:
      url: https://hooks.example.org/off
`)

	sinks, err := LoadSinks(path)
	require.NoError(t, err)
	// Disabled sinks are filtered out at load time.
	require.Len(t, sinks, 2)
	assert.Equal(t, "ops-queue", sinks[0].ID)
	assert.Equal(t, TypeQueue, sinks[0].Type)
	assert.Equal(t, QueueProviderAWSSQS, sinks[0].Queue.Provider)
	assert.Equal(t, "webhook", sinks[1].ID)
	assert.Equal(t, httpDefaultMethod, sinks[1].HTTP.Method)
	assert.Equal(t, httpDefaultTimeoutSeconds, sinks[1].HTTP.TimeoutSeconds)
}

func TestLoadSinksValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing id",
			content: "notifiers:\n  - type: http\n    http:\n      url: https://x.example\n",
			wantErr: "id is required",
		},
		{
			name:    "missing type",
			content: "notifiers:\n  - id: x\n",
			wantErr: "type is required",
		},
		{
			name:    "unknown queue provider",
			content: "notifiers:\n  - id: x\n    type: queue\n    queue:\n      provider: azure\n",
			wantErr: "not supported",
		},
		{
			name:    "http without url",
			content: "notifiers:\n  - id: x\n    type: http\n    http:\n      method: POST\n",
			wantErr: "http.url is required",
		},
		{
			name:    "duplicate ids",
			content: "notifiers:\n  - id: x\n    type: http\n    http:\n      url: https://a.example\n  - id: x\n    type: http\n    http:\n      url: https://b.example\n",
			wantErr: "duplicate notifier id",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSinks(t, "notifiers.yaml", tc.content)
			_, err := LoadSinks(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadSinksExpandsEnv(t *testing.T) {
	t.Setenv("HOOK_URL", "https://hooks.example.org/secret")
	path := writeSinks(t, "notifiers.yaml", `
notifiers:
  - id: webhook
    type: http
    http:
      url: ${HOOK_URL}
`)

	sinks, err := LoadSinks(path)
	require.NoError(t, err)
	require.Len(t, sinks, 1)
	assert.Equal(t, "https://hooks.example.org/secret", sinks[0].HTTP.URL)
}

func TestHTTPNotifierDeliversRunEvent(t *testing.T) {
	var got RunEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	cfg := sanitizeSink(SinkConfig{
		ID:   "webhook",
		Type: TypeHTTP,
		HTTP: &HTTPSinkConfig{URL: srv.URL},
	})

	sink, err := DefaultRegistry().NotifierFor(context.Background(), cfg, nil)
	require.NoError(t, err)

	evt := RunEvent{
		Kind:        "daily",
		Date:        "2025-10-10",
		Records:     12,
		OutputPath:  "output/news_2025-10-10.csv",
		GeneratedAt: time.Date(2025, 10, 11, 1, 0, 0, 0, time.UTC),
	}
	require.NoError(t, sink.Notify(context.Background(), evt))

	assert.Equal(t, "daily", got.Kind)
	assert.Equal(t, 12, got.Records)
	assert.Equal(t, "output/news_2025-10-10.csv", got.OutputPath)
}

func TestHTTPNotifierRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := sanitizeSink(SinkConfig{
		ID:   "webhook",
		Type: TypeHTTP,
		HTTP: &HTTPSinkConfig{URL: srv.URL},
	})

	sink, err := DefaultRegistry().NotifierFor(context.Background(), cfg, nil)
	require.NoError(t, err)

	err = sink.Notify(context.Background(), RunEvent{Kind: "weekly"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestNotifyAllSurvivesFailingSink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := sanitizeSink(SinkConfig{
		ID:   "failing",
		Type: TypeHTTP,
		HTTP: &HTTPSinkConfig{URL: srv.URL},
	})
	sink, err := DefaultRegistry().NotifierFor(context.Background(), cfg, nil)
	require.NoError(t, err)

	// Must not panic or propagate the delivery error.
	NotifyAll(context.Background(), []Notifier{sink, nil}, RunEvent{Kind: "daily"}, nil)
}
