package scoring

import (
	"regexp"
	"strings"
)

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// extractJSONObject returns the first balanced {...} object in a model
// answer, ignoring braces inside strings. Models sometimes wrap the JSON in
// a code fence or add a sentence before it.
func extractJSONObject(text string) (string, error) {
	s := stripCodeBlock(text)
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", ErrBadResponse
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", ErrBadResponse
}
