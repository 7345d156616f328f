package mention

import (
	"regexp"
	"strings"
)

// mentionRe matches @-prefixed identifiers: word characters, dots, plus and
// hyphen. Trailing punctuation like the comma in "@alice," is not part of
// the token.
var mentionRe = regexp.MustCompile(`@([\w.+-]+)`)

// Extract returns the distinct usernames mentioned in text, in order of
// first appearance and without the leading "@".
func Extract(text string) []string {
	matches := mentionRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	var names []string
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// Snippet shortens text to at most max runes, appending an ellipsis when the
// text was cut. Leading and trailing whitespace is trimmed first.
func Snippet(text string, max int) string {
	s := strings.TrimSpace(text)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
