package resolution

import (
	"errors"
	"strings"
)

// ErrASINConflict indicates an outcome claimed a matched ASIN already held by
// a different resolution record. The write is rejected; the existing
// assignment is never overwritten.
var ErrASINConflict = errors.New("matched asin already claimed")

// isUniqueASINViolation recognises the SQLite constraint error raised by the
// partial unique index on matched_asin.
func isUniqueASINViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") &&
		strings.Contains(msg, "matched_asin")
}
