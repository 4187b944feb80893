// Package api defines the data types shared across the hle application.
//
// This package contains the wire types for the OpenAI-compatible chat
// completions API exposed by the inference engine, the benchmark question
// type loaded from the dataset, and the prediction result types written to
// disk. All types are designed to be JSON-serializable.
package api

// ChatMessage is a single message in a chat completion request.
type ChatMessage struct {
	// Role is the message author role ("system", "user", "assistant").
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}

// ChatRequest is the request body for POST /chat/completions.
//
// Only the fields the prediction runner actually sends are modeled here.
// The engine ignores unknown fields, so optional sampling parameters are
// omitted when zero-valued.
type ChatRequest struct {
	// Model is the served model name as registered with the engine.
	Model string `json:"model"`

	// Messages is the conversation so far, oldest first.
	Messages []ChatMessage `json:"messages"`

	// Temperature is the sampling temperature.
	Temperature float64 `json:"temperature"`

	// TopP is the nucleus sampling parameter. Omitted when zero.
	TopP float64 `json:"top_p,omitempty"`

	// MaxTokens caps the generated token count. Omitted when zero.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Stream requests server-sent event streaming.
	Stream bool `json:"stream"`
}

// ChatDelta is the incremental payload inside a streamed chunk choice.
//
// Engines running with a reasoning parser split output into regular
// content and reasoning content; both arrive as independent delta fields.
type ChatDelta struct {
	// Content is the visible answer text fragment.
	Content string `json:"content,omitempty"`

	// ReasoningContent is the chain-of-thought fragment emitted by the
	// engine's reasoning parser.
	ReasoningContent string `json:"reasoning_content,omitempty"`
}

// ChunkChoice is a single choice within a streamed chunk.
type ChunkChoice struct {
	// Delta carries the incremental text for this chunk.
	Delta ChatDelta `json:"delta"`

	// FinishReason is non-empty on the final chunk of a choice.
	FinishReason string `json:"finish_reason,omitempty"`
}

// ChatChunk is one server-sent event payload of a streaming completion.
type ChatChunk struct {
	// Choices holds the per-choice deltas. The runner only requests a
	// single choice, so Choices[0] is the one that matters.
	Choices []ChunkChoice `json:"choices"`
}

// Question is a single benchmark question.
//
// The field set mirrors the dataset schema: each row carries a stable ID
// used for result files and resume detection, the question text, the
// expected answer style, and an optional image payload for multimodal
// questions (which the text-only runner skips).
type Question struct {
	// ID is the dataset-stable question identifier.
	ID string `json:"id"`

	// Question is the full question text.
	Question string `json:"question"`

	// AnswerType is either "exact_match" or "multiple_choice" and selects
	// the prompt template.
	AnswerType string `json:"answer_type"`

	// Image is a base64 or URL image payload; non-empty for multimodal
	// questions.
	Image string `json:"image,omitempty"`
}

// ParsedAnswer is the structured answer extracted from a model response.
type ParsedAnswer struct {
	// Explanation is the model's stated reasoning for its answer.
	Explanation string `json:"explanation"`

	// Answer is the model's final answer, verbatim.
	Answer string `json:"answer"`

	// Confidence is the self-reported confidence percentage (0-100).
	// Zero when the model did not report one.
	Confidence int `json:"confidence"`
}

// Result is the complete record saved for one attempted question.
type Result struct {
	// ID is the question identifier; also names the result file.
	ID string `json:"id"`

	// Question is the original question text, kept for self-contained
	// result files.
	Question string `json:"question"`

	// Reasoning is the accumulated reasoning content from the engine's
	// reasoning parser.
	Reasoning string `json:"reasoning"`

	// RawResponse is the accumulated visible answer text.
	RawResponse string `json:"raw_response"`

	// Parsed is the structured answer extracted from RawResponse.
	Parsed ParsedAnswer `json:"parsed"`
}
