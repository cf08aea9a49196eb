package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopper-agents/internal/common/config"
	apperrors "shopper-agents/internal/common/errors"
)

func completionResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]interface{}{"content": content}},
		},
	}
}

func newTestClient(baseURL string, maxRetries int) *Client {
	return NewClient(config.ReasoningConfig{
		BaseURL:     baseURL,
		APIKey:      "test-key",
		Model:       "gpt-4o-mini",
		Temperature: 0.2,
		Timeout:     2000,
		MaxRetries:  maxRetries,
	})
}

func TestComplete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var payload struct {
			Model    string    `json:"model"`
			Messages []Message `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "gpt-4o-mini", payload.Model)
		require.NotEmpty(t, payload.Messages)
		assert.Equal(t, RoleSystem, payload.Messages[0].Role)

		json.NewEncoder(w).Encode(completionResponse(`{"ok":true}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)
	text, err := client.Complete(context.Background(), "you are a test", []Message{
		{Role: RoleUser, Content: "hello"},
	})

	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)
}

func TestComplete_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(completionResponse("recovered"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3)
	text, err := client.Complete(context.Background(), "sys", []Message{{Role: RoleUser, Content: "q"}})

	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestComplete_ExhaustedRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 1)
	_, err := client.Complete(context.Background(), "sys", []Message{{Role: RoleUser, Content: "q"}})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeReasoningService, apperrors.CodeOf(err))
	assert.True(t, apperrors.IsRecoverable(err))
}

func TestComplete_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		json.NewEncoder(w).Encode(completionResponse("late"))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := newTestClient(server.URL, 2)
	_, err := client.Complete(ctx, "sys", []Message{{Role: RoleUser, Content: "q"}})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeReasoningService, apperrors.CodeOf(err))
}

func TestComplete_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)
	_, err := client.Complete(context.Background(), "sys", []Message{{Role: RoleUser, Content: "q"}})
	require.Error(t, err)
}
