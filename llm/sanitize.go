package llm

import (
	"regexp"
	"strings"
)

var thinkBlockRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// SanitizeJSONResponse strips markdown code fences that models wrap around
// JSON answers. The language hint is removed first ("json\n"), then every
// backtick fence, then surrounding whitespace.
func SanitizeJSONResponse(text string) string {
	noHint := strings.ReplaceAll(text, "json\n", "")
	return strings.TrimSpace(strings.ReplaceAll(noHint, "```", ""))
}

// StripThinkBlocks removes <think>...</think> reasoning blocks, including
// their contents, from a reasoning model's answer.
func StripThinkBlocks(text string) string {
	return thinkBlockRe.ReplaceAllString(text, "")
}
