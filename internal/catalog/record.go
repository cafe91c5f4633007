package catalog

import "strings"

// Record is a locally owned product description awaiting an external
// identifier. Records are read-only input to the resolution engine.
type Record struct {
	ID        int64
	SetNumber string
	Name      string
	EAN       string
	UPC       string
}

// Label returns a short human-readable identifier for progress output.
func (r Record) Label() string {
	name := strings.TrimSpace(r.Name)
	number := strings.TrimSpace(r.SetNumber)
	switch {
	case number != "" && name != "":
		return number + " " + name
	case number != "":
		return number
	case name != "":
		return name
	default:
		return "(unnamed record)"
	}
}
