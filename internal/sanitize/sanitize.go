// Package sanitize strips conversational wrapping from hosted-model output.
// Models are asked to return raw JSON but do not reliably honor that, so
// every response passes through here before parsing.
package sanitize

import (
	"encoding/json"
	"fmt"
	"strings"
)

const fence = "```"

// Clean removes Markdown code fences and surrounding prose from raw model
// output. When the text contains a fenced block, the content of the first
// block wins; otherwise the trimmed text is returned unchanged.
func Clean(raw string) string {
	text := strings.TrimSpace(raw)

	start := strings.Index(text, fence)
	if start == -1 {
		return text
	}

	rest := text[start+len(fence):]
	rest = strings.TrimPrefix(rest, "json")
	rest = strings.TrimPrefix(rest, "JSON")
	if end := strings.Index(rest, fence); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// ExtractJSON returns the outermost JSON object or array embedded in text,
// for responses where the model wrapped the payload in prose instead of a
// code fence.
func ExtractJSON(text string) (string, bool) {
	first := strings.IndexAny(text, "{[")
	if first == -1 {
		return "", false
	}

	var closer string
	if text[first] == '{' {
		closer = "}"
	} else {
		closer = "]"
	}

	last := strings.LastIndex(text, closer)
	if last <= first {
		return "", false
	}
	return text[first : last+1], true
}

// DecodeInto cleans raw model output and unmarshals it into target. When the
// cleaned text is not valid JSON on its own, a JSON fragment embedded in
// prose is tried before giving up.
func DecodeInto(raw string, target any) error {
	text := Clean(raw)

	err := json.Unmarshal([]byte(text), target)
	if err == nil {
		return nil
	}

	if embedded, ok := ExtractJSON(text); ok {
		if embErr := json.Unmarshal([]byte(embedded), target); embErr == nil {
			return nil
		}
	}
	return fmt.Errorf("decode model output: %w", err)
}
