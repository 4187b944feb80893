// Package predict runs benchmark predictions against a served model.
//
// The package formats questions into prompts, drives streaming chat
// completions through a bounded worker pool, parses the structured answer
// out of each response, and persists one result file per question.
package predict

import (
	"strings"

	"github.com/hle-eval/hle/internal/api"
)

// Prompt templates instruct the model to emit a parseable three-field
// response. The {question} placeholder is substituted verbatim.
const (
	promptExactAnswer = "You will be given a question and a response format. Please output the answer to the question following the format.\n\n" +
		"Response format:\n" +
		"Explanation: {your explanation for your final answer}\n" +
		"Exact Answer: {your succinct, final answer}\n" +
		"Confidence: {your confidence score between 0% and 100% for your answer}\n\n" +
		"Question:\n{question}"

	promptMultipleChoice = "You will be given a question and a response format. Please output the answer to the question following the format.\n\n" +
		"Response format:\n" +
		"Explanation: {your explanation for your answer choice}\n" +
		"Answer: {your chosen answer}\n" +
		"Confidence: {your confidence score between 0% and 100% for your answer}\n\n" +
		"Question:\n{question}"
)

// answerTypeExactMatch selects the exact-answer template; every other
// answer type gets the multiple-choice template.
const answerTypeExactMatch = "exact_match"

// FormatMessages builds the chat messages for a question, selecting the
// template by answer type.
func FormatMessages(q api.Question) []api.ChatMessage {
	template := promptMultipleChoice
	if q.AnswerType == answerTypeExactMatch {
		template = promptExactAnswer
	}

	return []api.ChatMessage{
		{
			Role:    "user",
			Content: strings.Replace(template, "{question}", q.Question, 1),
		},
	}
}
