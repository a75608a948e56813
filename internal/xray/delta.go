package xray

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// fencedJSONRe matches a ```json ... ``` code fence. The (?s) flag enables
// dot-all mode so . matches newlines.
var fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ParseDelta extracts a delta graph from raw provider output. Providers are
// asked for a bare JSON object but often wrap it in a code fence or leading
// prose, so parsing is layered:
//
//  1. a ```json fenced block
//  2. the whole trimmed text as JSON
//  3. the outermost {...} span in the text
//
// The parsed graph is validated before it is returned; a delta that parses
// but fails validation is still an error.
func ParseDelta(text string) (*Graph, error) {
	var raw string
	switch {
	case fencedJSONRe.MatchString(text):
		raw = fencedJSONRe.FindStringSubmatch(text)[1]
	case looksLikeJSON(text):
		raw = strings.TrimSpace(text)
	default:
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("%w: no JSON object in provider output", ErrInvalidDelta)
		}
		raw = text[start : end+1]
	}

	var g Graph
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDelta, err)
	}
	if err := ValidateDelta(&g); err != nil {
		return nil, err
	}
	return &g, nil
}

func looksLikeJSON(text string) bool {
	t := strings.TrimSpace(text)
	return strings.HasPrefix(t, "{") && strings.HasSuffix(t, "}")
}

// Encode serializes a graph for storage in an artifact record.
func (g *Graph) Encode() (string, error) {
	b, err := json.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("encoding graph: %w", err)
	}
	return string(b), nil
}

// Decode deserializes a stored graph.
func Decode(content string) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal([]byte(content), &g); err != nil {
		return nil, fmt.Errorf("decoding stored graph: %w", err)
	}
	return &g, nil
}
