// Package runner orchestrates resolution runs: it pulls pending work from
// the store in pages, paces marketplace traffic, persists each outcome, and
// resolves ASIN ownership conflicts. A lock file keeps concurrent runs from
// interleaving writes against the same database.
package runner
