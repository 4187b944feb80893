package predict

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hle-eval/hle/internal/api"
)

func TestParseResponseFull(t *testing.T) {
	text := "Explanation: The conductor factors as 2^2 * 3^2 * 7 * 11 * 13.\n" +
		"Exact Answer: 144\n" +
		"Confidence: 85%"

	parsed := ParseResponse(text)
	assert.Equal(t, "The conductor factors as 2^2 * 3^2 * 7 * 11 * 13.", parsed.Explanation)
	assert.Equal(t, "144", parsed.Answer)
	assert.Equal(t, 85, parsed.Confidence)
}

func TestParseResponseAnswerLabel(t *testing.T) {
	text := "Explanation: B matches the definition.\nAnswer: B\nConfidence: 100%"

	parsed := ParseResponse(text)
	assert.Equal(t, "B", parsed.Answer)
	assert.Equal(t, 100, parsed.Confidence)
}

func TestParseResponseMissingFields(t *testing.T) {
	parsed := ParseResponse("I am not sure about this one.")
	assert.Equal(t, api.ParsedAnswer{}, parsed)
}

func TestParseResponseNoPercentSign(t *testing.T) {
	parsed := ParseResponse("Answer: 42\nConfidence: 90")
	assert.Equal(t, "42", parsed.Answer)
	assert.Zero(t, parsed.Confidence)
}

func TestParseResponseFirstLineOnly(t *testing.T) {
	text := "Explanation: first\nmore detail\nExact Answer: yes\nConfidence: 50%"

	parsed := ParseResponse(text)
	assert.Equal(t, "first", parsed.Explanation)
	assert.Equal(t, "yes", parsed.Answer)
	assert.Equal(t, 50, parsed.Confidence)
}
