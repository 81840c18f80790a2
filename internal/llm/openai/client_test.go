package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspace-backend/internal/llm"
)

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: true},
		{name: "gpt5 variant", model: "gpt-5-mini", want: true},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: true},
		{name: "gpt4", model: "gpt-4o", want: false},
		{name: "empty", model: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isGPT5(tt.model))
		})
	}
}

func withServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	server := httptest.NewServer(handler)
	oldURL := apiURL
	apiURL = server.URL
	t.Cleanup(func() {
		apiURL = oldURL
		server.Close()
	})
}

func TestCompleteSendsJSONModeRequest(t *testing.T) {
	var mu sync.Mutex
	var got map[string]any
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		mu.Lock()
		got = payload
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" {\"summary\":\"ok\"} "}}]}`))
	})

	client, err := NewClient("test-key", "gpt-4o-mini", time.Second)
	require.NoError(t, err)

	out, err := client.Complete(context.Background(), llm.Prompt{System: "sys", User: "hello"})
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"ok"}`, out)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.Equal(t, map[string]any{"type": "json_object"}, got["response_format"])
	assert.Len(t, got["messages"], 2)
	assert.Contains(t, got, "temperature")
}

func TestCompleteOmitsTemperatureForGPT5(t *testing.T) {
	var hasTemp atomic.Bool
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_, ok := payload["temperature"]
		hasTemp.Store(ok)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	})

	client, err := NewClient("k", "gpt-5-mini", time.Second)
	require.NoError(t, err)
	_, err = client.Complete(context.Background(), llm.Prompt{User: "x"})
	require.NoError(t, err)
	assert.False(t, hasTemp.Load())
}

func TestCompleteSurfacesHTTPError(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	})

	client, err := NewClient("k", "gpt-4o", time.Second)
	require.NoError(t, err)
	_, err = client.Complete(context.Background(), llm.Prompt{User: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "slow down")
}

func TestCompleteTimesOut(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	})

	client, err := NewClient("k", "gpt-4o", 20*time.Millisecond)
	require.NoError(t, err)
	_, err = client.Complete(context.Background(), llm.Prompt{User: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestNewClientValidates(t *testing.T) {
	_, err := NewClient("", "gpt-4o", 0)
	assert.Error(t, err)
	_, err = NewClient("k", " ", 0)
	assert.Error(t, err)
}
