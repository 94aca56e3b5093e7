// Package record holds the rules that keep a caregiver record's derived
// fields consistent: day counting, amount computation, field edits and the
// merge of extracted data.
package record

import (
	"math"
	"strings"
	"time"

	"github.com/garyjia/caredoc/internal/domain/entity"
)

const day = 24 * time.Hour

// ComputeDays returns the inclusive number of days between start and end.
// ok is false when either date is missing or unparsable, in which case the
// caller leaves totalDays untouched. Reversed dates count the same as
// ordered ones.
func ComputeDays(start, end string) (int64, bool) {
	s, ok := ParseDate(start)
	if !ok {
		return 0, false
	}
	e, ok := ParseDate(end)
	if !ok {
		return 0, false
	}

	diff := e.Sub(s)
	if diff < 0 {
		diff = -diff
	}
	return int64(math.Ceil(float64(diff)/float64(day))) + 1, true
}

// ComputeAmount returns rate × days
func ComputeAmount(rate, days int64) int64 {
	return rate * days
}

// ParseDate parses a YYYY-MM-DD date (or a full RFC3339 timestamp) as UTC
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(entity.DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
