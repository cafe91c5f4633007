package catalog

import (
	"regexp"
	"strings"
)

// Set numbers are a run of digits optionally followed by a dash and a
// variant suffix, e.g. "75192" or "10179-2". Marketplace listing titles
// usually omit the variant.
var setNumberPattern = regexp.MustCompile(`\b(\d{3,7})(?:-(\d{1,2}))?\b`)

// ExtractSetNumber parses the first set-number-like token from free text and
// returns it with any variant suffix preserved. The second return is false
// when the text contains no such token.
func ExtractSetNumber(text string) (string, bool) {
	match := setNumberPattern.FindStringSubmatch(text)
	if match == nil {
		return "", false
	}
	if match[2] != "" {
		return match[1] + "-" + match[2], true
	}
	return match[1], true
}

// BaseSetNumber strips the variant suffix: "75192-1" becomes "75192".
func BaseSetNumber(number string) string {
	if idx := strings.IndexByte(number, '-'); idx >= 0 {
		return number[:idx]
	}
	return number
}

// SameSet reports whether two set-number tokens refer to the same set,
// ignoring variant suffixes. Empty tokens never match.
func SameSet(a, b string) bool {
	a = BaseSetNumber(strings.TrimSpace(a))
	b = BaseSetNumber(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return a == b
}
