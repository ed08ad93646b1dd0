// ABOUTME: Recovers a {caption, tags} record from free-text vision model output
// ABOUTME: Takes the span from the first '{' to the last '}' and decodes it as JSON
package core

import (
	"encoding/json"
	"strings"

	"github.com/harper/urban-lens/internal/models"
)

// ExtractCaption parses the JSON object embedded in text.
//
// The object is taken to run from the first '{' to the last '}'. This is not a
// balanced-brace scan: stray braces in surrounding prose, or several objects in
// one reply, produce a span that fails to decode.
func ExtractCaption(text string) (models.Caption, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return models.Caption{}, &ExtractionError{Reason: "no JSON object found"}
	}

	var caption models.Caption
	if err := json.Unmarshal([]byte(text[start:end+1]), &caption); err != nil {
		return models.Caption{}, &ExtractionError{Reason: "malformed JSON", Err: err}
	}
	return caption, nil
}
