package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hle-eval/hle/internal/api"
)

// fakeEngine returns a test server that streams the given SSE lines for
// any chat completion request and captures the decoded request body.
func fakeEngine(t *testing.T, lines []string, gotReq *api.ChatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)

		if gotReq != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(gotReq))
		}

		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			fmt.Fprintf(w, "%s\n\n", line)
		}
	}))
}

func chunkLine(t *testing.T, delta api.ChatDelta) string {
	t.Helper()
	data, err := json.Marshal(api.ChatChunk{
		Choices: []api.ChunkChoice{{Delta: delta}},
	})
	require.NoError(t, err)
	return "data: " + string(data)
}

func TestCompleteAccumulatesContentAndReasoning(t *testing.T) {
	var gotReq api.ChatRequest
	srv := fakeEngine(t, []string{
		chunkLine(t, api.ChatDelta{ReasoningContent: "thinking "}),
		chunkLine(t, api.ChatDelta{ReasoningContent: "hard"}),
		chunkLine(t, api.ChatDelta{Content: "Answer: "}),
		chunkLine(t, api.ChatDelta{Content: "42"}),
		"data: [DONE]",
	}, &gotReq)
	defer srv.Close()

	c := NewClient(srv.URL + "/v1")
	content, reasoning, err := c.Complete(context.Background(), api.ChatRequest{
		Model:       "test-model",
		Messages:    []api.ChatMessage{{Role: "user", Content: "q"}},
		Temperature: 0.6,
	})

	require.NoError(t, err)
	assert.Equal(t, "Answer: 42", content)
	assert.Equal(t, "thinking hard", reasoning)

	// Streaming is always requested regardless of the caller's value.
	assert.True(t, gotReq.Stream)
	assert.Equal(t, "test-model", gotReq.Model)
	assert.Equal(t, 0.6, gotReq.Temperature)
}

func TestStreamChatSkipsMalformedChunks(t *testing.T) {
	srv := fakeEngine(t, []string{
		"data: {not json",
		": sse comment",
		chunkLine(t, api.ChatDelta{Content: "ok"}),
		"data: [DONE]",
	}, nil)
	defer srv.Close()

	c := NewClient(srv.URL + "/v1")
	content, _, err := c.Complete(context.Background(), api.ChatRequest{})

	require.NoError(t, err)
	assert.Equal(t, "ok", content)
}

func TestStreamChatStopsAtDone(t *testing.T) {
	srv := fakeEngine(t, []string{
		chunkLine(t, api.ChatDelta{Content: "before"}),
		"data: [DONE]",
		chunkLine(t, api.ChatDelta{Content: "after"}),
	}, nil)
	defer srv.Close()

	c := NewClient(srv.URL + "/v1")
	content, _, err := c.Complete(context.Background(), api.ChatRequest{})

	require.NoError(t, err)
	assert.Equal(t, "before", content)
}

func TestStreamChatServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/v1")
	_, _, err := c.Complete(context.Background(), api.ChatRequest{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "model not found")
}

func TestStreamChatContextCancelled(t *testing.T) {
	srv := fakeEngine(t, []string{
		chunkLine(t, api.ChatDelta{Content: "partial"}),
	}, nil)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL + "/v1")
	_, _, err := c.Complete(ctx, api.ChatRequest{})
	require.Error(t, err)
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	c := NewClient("http://localhost:8000/v1/")
	assert.Equal(t, "http://localhost:8000/v1", c.BaseURL())
}
