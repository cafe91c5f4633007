package marketplace

import "context"

// IdentifierKind distinguishes the barcode variants a marketplace lookup
// accepts.
type IdentifierKind string

const (
	KindEAN IdentifierKind = "ean"
	KindUPC IdentifierKind = "upc"
)

// Candidate is a single search result from the external catalog.
type Candidate struct {
	ASIN     string
	Title    string
	Brand    string
	ImageURL string
}

// Searcher defines the marketplace search operations used by the match
// pipeline. Both operations may fail transiently (network, rate limit) or
// return zero results; the pipeline treats either as "no match found".
type Searcher interface {
	SearchByIdentifier(ctx context.Context, code string, kind IdentifierKind) ([]Candidate, error)
	SearchByKeywords(ctx context.Context, query string) ([]Candidate, error)
}
