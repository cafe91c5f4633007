// Package services defines shared error utilities consumed by the resolution
// runner and external integrations.
//
// The structured error markers plus the Wrap helper classify failures into
// the categories the match pipeline and runner act on: transient external
// failures fall through to the next strategy, validation failures skip a
// strategy silently, and configuration failures abort before a run starts.
package services
