package quizgen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// normalize strips the markdown fences and prose models like to wrap JSON
// in, returning the first complete JSON array or object. Unbalanced
// input comes back from its first bracket so the parse error names it.
func normalize(raw string) string {
	clean := strings.TrimSpace(raw)
	if i := strings.Index(clean, "```"); i >= 0 {
		clean = clean[i+3:]
		// Drop the info string of the fence, e.g. "json".
		if nl := strings.IndexByte(clean, '\n'); nl >= 0 && !strings.ContainsAny(clean[:nl], "[{") {
			clean = clean[nl+1:]
		}
		if j := strings.LastIndex(clean, "```"); j >= 0 {
			clean = clean[:j]
		}
	}
	clean = strings.TrimSpace(clean)

	// The first position that decodes as a complete value wins, so prose
	// after the JSON, brackets included, is left behind.
	for i := 0; i < len(clean); i++ {
		if clean[i] != '[' && clean[i] != '{' {
			continue
		}
		var v json.RawMessage
		if err := json.NewDecoder(strings.NewReader(clean[i:])).Decode(&v); err == nil {
			return string(v)
		}
	}

	start := strings.IndexAny(clean, "[{")
	if start < 0 {
		return clean
	}
	return clean[start:]
}

// splitItems parses the normalized text as an array of raw item objects.
// A {"items": [...]} wrapper is accepted too.
func splitItems(raw string) ([]json.RawMessage, error) {
	data := []byte(normalize(raw))
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty response")
	}

	if data[0] == '{' {
		var wrapper struct {
			Items []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("parse item wrapper: %w", err)
		}
		if wrapper.Items == nil {
			return nil, fmt.Errorf("object response without items")
		}
		return wrapper.Items, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse item array: %w", err)
	}
	return items, nil
}
