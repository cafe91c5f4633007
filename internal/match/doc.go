// Package match implements the cascading strategy pipeline that resolves a
// catalog record to a marketplace candidate.
//
// Strategies run in fixed priority order of decreasing certainty: EAN lookup,
// UPC lookup, exact-title search, fuzzy-title search. The first strategy that
// yields an acceptable outcome wins. Candidates pass a brand relevance filter
// before scoring, and the similarity scorer combines normalized edit distance
// with a set-number bonus. Ambiguity is surfaced as a multiple outcome with
// ranked alternatives rather than forced to a decision.
package match
