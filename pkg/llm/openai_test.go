package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionServer(t *testing.T, content, finishReason string, capture *map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, capture)
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]interface{}{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o",
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"message":       map[string]string{"role": "assistant", "content": content},
					"finish_reason": finishReason,
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAIClient_Complete(t *testing.T) {
	var captured map[string]interface{}
	srv := completionServer(t, `{"type":"chat","message":"hi"}`, "stop", &captured)
	defer srv.Close()

	client, err := NewOpenAIClient(Config{
		Provider:     ProviderOpenAI,
		APIKey:       "test-key",
		BaseURL:      srv.URL,
		SystemPrompt: "you plan queries",
	})
	require.NoError(t, err)

	completion, err := client.Complete(context.Background(), Prompt{Messages: []Message{
		{Role: "user", Content: "hello"},
	}})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, completion.Status)
	assert.Equal(t, `{"type":"chat","message":"hi"}`, completion.Text)

	messages, ok := captured["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
	assert.Equal(t, "hello", messages[1].(map[string]interface{})["content"])
}

func TestOpenAIClient_Statuses(t *testing.T) {
	tests := []struct {
		name    string
		content string
		reason  string
		want    Status
	}{
		{"truncated", `{"type":`, "length", StatusTruncated},
		{"filtered", "", "content_filter", StatusFiltered},
		{"empty", "  ", "stop", StatusEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := completionServer(t, tt.content, tt.reason, nil)
			defer srv.Close()

			client, err := NewOpenAIClient(Config{APIKey: "k", BaseURL: srv.URL})
			require.NoError(t, err)

			completion, err := client.Complete(context.Background(), Prompt{Messages: []Message{{Role: "user", Content: "x"}}})
			require.NoError(t, err)
			assert.Equal(t, tt.want, completion.Status)
		})
	}
}

func TestOpenAIClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	client, err := NewOpenAIClient(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), Prompt{Messages: []Message{{Role: "user", Content: "x"}}})
	assert.Error(t, err)
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(Config{})
	assert.Error(t, err)
}

func TestManager(t *testing.T) {
	m := NewManager()
	_, err := m.GetClient("openai")
	assert.Error(t, err)

	require.NoError(t, m.RegisterClient("openai", Config{Provider: ProviderOpenAI, APIKey: "k"}))
	client, err := m.GetClient("openai")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, client.GetModelInfo().Provider)

	assert.Error(t, m.RegisterClient("other", Config{Provider: "anthropic"}))

	m.RemoveClient("openai")
	_, err = m.GetClient("openai")
	assert.Error(t, err)
}
