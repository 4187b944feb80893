// Package client implements an HTTP client for the OpenAI-compatible chat
// completions API served by the inference engine.
//
// The client speaks the streaming variant of the API exclusively: responses
// arrive as server-sent events whose "data:" payloads carry incremental
// content and reasoning deltas, terminated by a literal [DONE] marker.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hle-eval/hle/internal/api"
)

const (
	// chatCompletionsPath is the chat endpoint, relative to the API base
	// URL (which already ends in /v1).
	chatCompletionsPath = "/chat/completions"

	// maxLineSize is the scanner buffer cap for a single SSE line. A
	// delta is small, but a proxy may coalesce chunks into long lines.
	maxLineSize = 1024 * 1024
)

// Client is an inference engine API client.
//
// A single Client is safe for concurrent use by multiple prediction
// workers; the underlying http.Client pools connections across them.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the engine API at baseURL.
//
// baseURL is used exactly as given, e.g. "http://localhost:8000/v1".
// No request timeout is set on the client: generation can legitimately
// take minutes, so cancellation is driven by the request context. Dial
// and header timeouts guard against an unreachable engine.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:          1024,
				MaxIdleConnsPerHost:   1024,
				IdleConnTimeout:       90 * time.Second,
				ResponseHeaderTimeout: 5 * time.Minute,
			},
		},
	}
}

// BaseURL returns the API base URL the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// StreamChat sends a streaming chat completion request and invokes onDelta
// for every delta received, in arrival order.
//
// The request's Stream field is forced to true. StreamChat returns when the
// stream ends ([DONE] or EOF), the context is cancelled, or the server
// returns a non-200 status.
func (c *Client) StreamChat(ctx context.Context, req api.ChatRequest, onDelta func(api.ChatDelta)) error {
	req.Stream = true

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+chatCompletionsPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(msg))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// SSE frames are "data: {...}"; anything else (comments,
		// event names) is skipped.
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

		if data == "[DONE]" {
			break
		}

		var chunk api.ChatChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Skip malformed chunks rather than aborting the whole
			// generation.
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		onDelta(chunk.Choices[0].Delta)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading stream: %w", err)
	}

	return nil
}

// Complete runs a streaming chat completion to the end and returns the
// accumulated visible content and reasoning content.
func (c *Client) Complete(ctx context.Context, req api.ChatRequest) (content, reasoning string, err error) {
	var contentBuf, reasoningBuf strings.Builder

	err = c.StreamChat(ctx, req, func(delta api.ChatDelta) {
		contentBuf.WriteString(delta.Content)
		reasoningBuf.WriteString(delta.ReasoningContent)
	})
	if err != nil {
		return "", "", err
	}

	return contentBuf.String(), reasoningBuf.String(), nil
}
