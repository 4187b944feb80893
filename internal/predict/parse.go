package predict

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hle-eval/hle/internal/api"
)

// Extraction patterns for the structured response format. Each field is
// taken from the first line that carries its label; "Exact Answer" and
// "Answer" are accepted interchangeably since the two templates differ
// only in that label.
var (
	explanationRe = regexp.MustCompile(`Explanation:\s*(.*?)(?:\n|$)`)
	answerRe      = regexp.MustCompile(`(?:Exact Answer|Answer):\s*(.*?)(?:\n|$)`)
	confidenceRe  = regexp.MustCompile(`Confidence:\s*(\d+)%`)
)

// ParseResponse extracts the structured answer from a raw model response.
//
// Missing fields stay zero-valued; parsing never fails, matching the
// best-effort nature of free-text model output.
func ParseResponse(responseText string) api.ParsedAnswer {
	var parsed api.ParsedAnswer

	if m := explanationRe.FindStringSubmatch(responseText); m != nil {
		parsed.Explanation = strings.TrimSpace(m[1])
	}
	if m := answerRe.FindStringSubmatch(responseText); m != nil {
		parsed.Answer = strings.TrimSpace(m[1])
	}
	if m := confidenceRe.FindStringSubmatch(responseText); m != nil {
		// \d+ can't fail to parse; range is not validated, the model
		// may claim whatever confidence it likes.
		parsed.Confidence, _ = strconv.Atoi(m[1])
	}

	return parsed
}
