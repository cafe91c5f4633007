package resolution

import (
	"time"

	"brickmatch/internal/catalog"
)

// Status represents the lifecycle of a resolution record.
type Status string

const (
	StatusPending  Status = "pending"
	StatusFound    Status = "found"
	StatusNotFound Status = "not_found"
	StatusMultiple Status = "multiple"
	StatusExcluded Status = "excluded"
)

var allStatuses = []Status{
	StatusPending,
	StatusFound,
	StatusNotFound,
	StatusMultiple,
	StatusExcluded,
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// Valid reports whether the status is a known value.
func (s Status) Valid() bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Method identifies which match strategy produced an outcome.
type Method string

const (
	MethodEAN        Method = "ean"
	MethodUPC        Method = "upc"
	MethodTitleExact Method = "title_exact"
	MethodTitleFuzzy Method = "title_fuzzy"
)

// ConfidenceBand returns the inclusive confidence range a found outcome of
// this method must fall within.
func (m Method) ConfidenceBand() (min, max int) {
	switch m {
	case MethodEAN:
		return 100, 100
	case MethodUPC:
		return 95, 95
	case MethodTitleExact:
		return 85, 85
	case MethodTitleFuzzy:
		return 60, 80
	default:
		return 0, 0
	}
}

// Alternative is one entry in the ranked list stored on ambiguous outcomes.
type Alternative struct {
	ASIN       string `json:"asin"`
	Title      string `json:"title"`
	Confidence int    `json:"confidence"`
}

// Outcome is what a pipeline run wants persisted for one record.
type Outcome struct {
	Status       Status
	MatchedASIN  string
	Method       Method
	Confidence   int
	Alternatives []Alternative
	LastError    string
}

// Record is the per-catalog-record state machine tracking match progress.
type Record struct {
	ID            int64
	CatalogID     int64
	Status        Status
	MatchedASIN   string
	Method        Method
	Confidence    int
	Alternatives  []Alternative
	Attempts      int
	LastAttemptAt *time.Time
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Task pairs a pending resolution record with its catalog input for one
// pipeline pass. Tasks are ordered by ascending catalog id so cursor-based
// resumption is deterministic.
type Task struct {
	ResolutionID int64
	Attempts     int
	Catalog      catalog.Record
}

// Summary aggregates resolution state for status output.
type Summary struct {
	Counts        map[Status]int
	Total         int
	AvgConfidence float64
	LastAttemptAt *time.Time
}
