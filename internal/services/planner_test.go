package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/saga-engine/pkg/chat"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenAIPlanner_CompleteJSON(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "{\"npcUpdates\":[]}"}
			}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 8, "total_tokens": 128}
		}`)
	}))
	defer srv.Close()

	p := NewOpenAIPlanner("sk-test", srv.URL, "gpt-4o-mini", testLogger(), option.WithMaxRetries(0))
	out, err := p.CompleteJSON(context.Background(), []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: "plan"},
		{Role: chat.ChatRoleUser, Content: "state"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"npcUpdates":[]}`, out)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	format, ok := got["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_object", format["type"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 2)
}

func TestOpenAIPlanner_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"bad model","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	p := NewOpenAIPlanner("sk-test", srv.URL, "nope", testLogger(), option.WithMaxRetries(0))
	_, err := p.CompleteJSON(context.Background(), []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "x"}})
	assert.Error(t, err)
}

func TestOpenAIPlanner_NoMessages(t *testing.T) {
	p := NewOpenAIPlanner("sk-test", "", "gpt-4o-mini", testLogger())
	_, err := p.CompleteJSON(context.Background(), nil)
	assert.Error(t, err)
}

func TestOpenAIPlanner_Ready(t *testing.T) {
	assert.NoError(t, NewOpenAIPlanner("sk-test", "", "m", nil).Ready(context.Background()))
	assert.NoError(t, NewOpenAIPlanner("", "http://localhost:11434/v1", "m", nil).Ready(context.Background()))
	assert.Error(t, NewOpenAIPlanner("", "", "m", nil).Ready(context.Background()))
	assert.Equal(t, "openai:m", NewOpenAIPlanner("", "", "m", nil).Name())
}

func TestMockPlanner(t *testing.T) {
	m := NewMockPlanner()
	out, err := m.CompleteJSON(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, EmptyPlan, out)

	m.SetResponse(`{"npcUpdates":null}`)
	out, _ = m.CompleteJSON(context.Background(), nil)
	assert.Equal(t, `{"npcUpdates":null}`, out)

	m.SetError(assert.AnError)
	_, err = m.CompleteJSON(context.Background(), nil)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 3, m.CallCount())
}
