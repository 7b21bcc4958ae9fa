package inference

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// captureCompletionServer records each chat-completion request body and
// answers with a fixed assistant message.
func captureCompletionServer(t *testing.T, bodies *[]map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		*bodies = append(*bodies, body)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"choices": [{"message": {"role": "assistant", "content": "Paris"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 3}
		}`)
	}))
}

func TestOpenAIClientSendsZeroTemperature(t *testing.T) {
	var bodies []map[string]any
	srv := captureCompletionServer(t, &bodies)
	defer srv.Close()

	client := NewOpenAIClient(srv.URL + "/v1")
	resp, err := client.Invoke(context.Background(), Request{
		Model:       "llama3",
		Messages:    []Message{{Role: RoleUser, Content: "Capital of France?"}},
		MaxTokens:   64,
		Temperature: 0,
		TopP:        1.0,
	})
	require.NoError(t, err)
	require.Equal(t, "Paris", resp.Text)

	require.Len(t, bodies, 1)
	temp, ok := bodies[0]["temperature"]
	require.True(t, ok, "temperature must reach the wire even when zero")
	require.InDelta(t, 0, temp.(float64), 1e-30)
}

func TestOpenAIClientSendsSamplingTemperature(t *testing.T) {
	var bodies []map[string]any
	srv := captureCompletionServer(t, &bodies)
	defer srv.Close()

	client := NewOpenAIClient(srv.URL + "/v1")
	_, err := client.Invoke(context.Background(), Request{
		Model:       "llama3",
		Messages:    []Message{{Role: RoleUser, Content: "Write a haiku."}},
		Temperature: 0.7,
		TopP:        0.9,
	})
	require.NoError(t, err)

	require.Len(t, bodies, 1)
	require.InDelta(t, 0.7, bodies[0]["temperature"].(float64), 1e-6)
	require.InDelta(t, 0.9, bodies[0]["top_p"].(float64), 1e-6)
}

func TestOpenAIClientUsageAndThinkStripping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"choices": [{"message": {"role": "assistant", "content": "<think>reasoning</think>Paris"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 20, "completion_tokens": 8}
		}`)
	}))
	defer srv.Close()

	client := NewOpenAIClient(srv.URL + "/v1")
	resp, err := client.Invoke(context.Background(), Request{
		Model:    "llama3",
		Messages: []Message{{Role: RoleUser, Content: "Capital of France?"}},
	})
	require.NoError(t, err)
	require.Equal(t, "Paris", resp.Text)
	require.Equal(t, 20, resp.Usage.PromptTokens)
	require.Equal(t, 8, resp.Usage.CompletionTokens)
}

func TestOpenAIClientNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"choices": [], "usage": {}}`)
	}))
	defer srv.Close()

	client := NewOpenAIClient(srv.URL + "/v1")
	_, err := client.Invoke(context.Background(), Request{
		Model:    "llama3",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.ErrorContains(t, err, "no choices")
}
