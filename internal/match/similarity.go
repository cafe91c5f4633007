package match

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"brickmatch/internal/catalog"
)

// Score weights: edit-distance similarity carries most of the confidence,
// with a fixed bonus when the candidate title contains the expected set
// number. Identical titles with a matching number reach exactly 100.
const (
	similarityWeight = 85
	setNumberBonus   = 15
)

var normalizer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Score computes a 0-100 confidence that candidateTitle describes the
// product named by expectedName with set number expectedNumber. The score is
// monotonic in decreasing edit distance between the normalized titles.
func Score(candidateTitle, expectedName, expectedNumber string) int {
	candidate := normalizeTitle(candidateTitle)
	expected := normalizeTitle(expectedName)
	if candidate == "" || expected == "" {
		return 0
	}

	distance := levenshtein.ComputeDistance(candidate, expected)
	longest := len(candidate)
	if len(expected) > longest {
		longest = len(expected)
	}
	ratio := 1 - float64(distance)/float64(longest)
	if ratio < 0 {
		ratio = 0
	}

	score := int(ratio * similarityWeight)
	if token, ok := catalog.ExtractSetNumber(candidateTitle); ok && catalog.SameSet(token, expectedNumber) {
		score += setNumberBonus
	}
	if score > 100 {
		score = 100
	}
	return score
}

// normalizeTitle lower-cases, strips diacritics, and collapses every
// non-alphanumeric run to a single space so punctuation and spacing
// differences do not dominate the edit distance.
func normalizeTitle(title string) string {
	folded, _, err := transform.String(normalizer, title)
	if err != nil {
		folded = title
	}
	var builder strings.Builder
	builder.Grow(len(folded))
	lastSpace := true
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			builder.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(builder.String())
}
