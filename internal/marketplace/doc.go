// Package marketplace defines the external catalog search surface the match
// pipeline consumes.
//
// The Searcher interface abstracts whichever marketplace API backs a
// deployment; internal/marketplace/amazon carries the production
// implementation. Candidates are the typed search results the pipeline
// filters and scores.
package marketplace
