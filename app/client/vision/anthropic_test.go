package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"snapsight/app/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnthropicTestProvider(t *testing.T, handler http.HandlerFunc) *anthropicProvider {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Provider.Anthropic.Token = "test-token"
	cfg.Provider.Anthropic.BaseURL = srv.URL + "/v1"

	provider, err := newAnthropic(cfg)
	require.NoError(t, err)

	return provider
}

func messagesResponse(text string) string {
	return `{"id":"msg_1","type":"message","role":"assistant","model":"claude-opus-4-1-20250805",` +
		`"content":[{"type":"text","text":` + mustJSON(text) + `}],` +
		`"stop_reason":"end_turn","stop_sequence":null,"usage":{"input_tokens":10,"output_tokens":5}}`
}

func TestAnthropicAnalyze(t *testing.T) {
	var gotBody map[string]any

	provider := newAnthropicTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(messagesResponse("B")))
	})

	answer, err := provider.Analyze(context.Background(), testImage())
	require.NoError(t, err)
	assert.Equal(t, "B", answer)

	messages, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
}

func TestAnthropicAnalyzeEmptyContentYieldsPlaceholder(t *testing.T) {
	provider := newAnthropicTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(messagesResponse("")))
	})

	answer, err := provider.Analyze(context.Background(), testImage())
	require.NoError(t, err)
	assert.Equal(t, NoResponse, answer)
}

func TestAnthropicAnalyzeUnauthorized(t *testing.T) {
	provider := newAnthropicTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	})

	_, err := provider.Analyze(context.Background(), testImage())
	assert.Error(t, err)
}
