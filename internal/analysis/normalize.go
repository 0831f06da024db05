package analysis

import (
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("(?s)^```(?:json|JSON)?[ \\t]*\\n?(.*?)\\n?[ \\t]*```$")

// StripFences removes a surrounding markdown code fence (```json ... ``` or
// ``` ... ```) from model output. Unfenced text is returned trimmed.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	// An opening fence with no closing one still gets its marker removed.
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```JSON")
		text = strings.TrimPrefix(text, "```")
		return strings.TrimSpace(text)
	}
	return text
}
