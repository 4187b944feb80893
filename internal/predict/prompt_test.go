package predict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hle-eval/hle/internal/api"
)

func TestFormatMessagesExactMatch(t *testing.T) {
	msgs := FormatMessages(api.Question{
		ID:         "q1",
		Question:   "What is 2+2?",
		AnswerType: "exact_match",
	})

	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "Exact Answer:")
	assert.Contains(t, msgs[0].Content, "What is 2+2?")
	assert.NotContains(t, msgs[0].Content, "{question}")
}

func TestFormatMessagesMultipleChoice(t *testing.T) {
	msgs := FormatMessages(api.Question{
		ID:         "q2",
		Question:   "Pick one.",
		AnswerType: "multiple_choice",
	})

	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Content, "your answer choice")
	assert.NotContains(t, msgs[0].Content, "Exact Answer:")
	assert.Contains(t, msgs[0].Content, "Pick one.")
}

func TestFormatMessagesUnknownTypeUsesMultipleChoice(t *testing.T) {
	msgs := FormatMessages(api.Question{Question: "q", AnswerType: "something_else"})

	require.Len(t, msgs, 1)
	assert.NotContains(t, msgs[0].Content, "Exact Answer:")
}
