package match

import (
	"strings"

	"brickmatch/internal/marketplace"
)

// Filter discards candidates that are not plausibly the product family being
// resolved, so unrelated marketplace listings never reach scoring.
type Filter struct {
	keywords []string
}

// NewFilter builds a relevance filter from lower-cased brand keywords.
func NewFilter(keywords []string) *Filter {
	normalized := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" {
			normalized = append(normalized, keyword)
		}
	}
	return &Filter{keywords: normalized}
}

// Relevant reports whether a candidate's title or brand mentions any of the
// configured keywords. An empty keyword list accepts everything.
func (f *Filter) Relevant(candidate marketplace.Candidate) bool {
	if len(f.keywords) == 0 {
		return true
	}
	title := strings.ToLower(candidate.Title)
	brand := strings.ToLower(candidate.Brand)
	for _, keyword := range f.keywords {
		if strings.Contains(title, keyword) || strings.Contains(brand, keyword) {
			return true
		}
	}
	return false
}

// Apply returns the candidates that pass the relevance check, preserving
// order.
func (f *Filter) Apply(candidates []marketplace.Candidate) []marketplace.Candidate {
	kept := make([]marketplace.Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if f.Relevant(candidate) {
			kept = append(kept, candidate)
		}
	}
	return kept
}
