// Package amazon provides the minimal Amazon catalog API client used during
// catalog resolution.
//
// It authenticates requests, exposes barcode and keyword search, and maps
// rate-limit and server errors to the transient classification the match
// pipeline falls through on. Options allow tests to supply custom HTTP
// clients without modifying production code.
package amazon
