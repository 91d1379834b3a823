package ai

import (
	"strings"
)

// StripFence removes a surrounding markdown code fence from model output,
// tolerating an optional language tag on the opening fence. Unfenced text is
// returned trimmed and otherwise untouched.
func StripFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	body := strings.TrimPrefix(trimmed, "```")
	// Drop the language tag line, e.g. "json".
	if idx := strings.IndexByte(body, '\n'); idx >= 0 {
		first := strings.TrimSpace(body[:idx])
		if first == "" || !strings.ContainsAny(first, "{[\"") {
			body = body[idx+1:]
		}
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}
