// Package core holds the analytics pipeline: date normalization, time
// bucketing, aggregation, axis ordering and insight generation. Everything
// here is a pure function over an in-memory record slice; no I/O, no state,
// no locale dependence.
package core

import (
	"strconv"
	"strings"
	"time"
)

// Timestamp is the zero-argument conversion exposed by store-native
// timestamp values.
type Timestamp interface {
	Time() time.Time
}

// dateLayouts are tried in order when the raw date is a string.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeDate resolves any supported raw date representation to a calendar
// date, truncated to midnight UTC. The second return is false for every shape
// it cannot resolve; it never panics and never returns an error.
func NormalizeDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() {
			return time.Time{}, false
		}
		return civil(d), true
	case *time.Time:
		if d == nil || d.IsZero() {
			return time.Time{}, false
		}
		return civil(*d), true
	case Timestamp:
		if d == nil {
			return time.Time{}, false
		}
		return civil(d.Time()), true
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return civil(t), true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// CoerceAmount turns a raw amount value into a non-negative float64.
// Non-numeric input is 0, never an error.
func CoerceAmount(v any) float64 {
	var f float64
	switch a := v.(type) {
	case float64:
		f = a
	case float32:
		f = float64(a)
	case int:
		f = float64(a)
	case int32:
		f = float64(a)
	case int64:
		f = float64(a)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if f < 0 {
		return 0
	}
	return f
}

// SanitizeRecords converts raw records into typed expenses. Records with
// unresolvable dates are kept (with a zero Date) so callers can still store
// or display them; every aggregate in this package skips them.
func SanitizeRecords(raw []RawRecord) []Expense {
	out := make([]Expense, 0, len(raw))
	for _, r := range raw {
		e := Expense{
			ID:          r.ID,
			OwnerID:     r.OwnerID,
			Amount:      CoerceAmount(r.Amount),
			Category:    strings.TrimSpace(r.Category),
			Description: strings.TrimSpace(r.Description),
			CreatedAt:   r.CreatedAt,
		}
		if d, ok := NormalizeDate(r.Date); ok {
			e.Date = d
		}
		out = append(out, e)
	}
	return out
}

// civil strips the time of day and pins the date to UTC.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
