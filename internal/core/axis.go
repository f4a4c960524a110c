package core

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// SortAxis orders bucket keys for chart rendering. Month keys follow the
// calendar (Jan…Dec) regardless of insertion order, year keys sort
// numerically ascending, and week keys sort by the Monday each label
// denotes. Keys that fail to parse sink to the end, keeping their relative
// order.
func SortAxis(mode ViewMode, keys []string) []string {
	out := make([]string, len(keys))
	copy(out, keys)

	switch mode {
	case ModeMonth:
		sort.SliceStable(out, func(i, j int) bool {
			return monthRank(out[i]) < monthRank(out[j])
		})
	case ModeYear:
		sort.SliceStable(out, func(i, j int) bool {
			return yearRank(out[i]) < yearRank(out[j])
		})
	case ModeWeek:
		sort.SliceStable(out, func(i, j int) bool {
			return weekRank(out[i]).Before(weekRank(out[j]))
		})
	}
	return out
}

// monthRank orders "Jan 2025"-style keys by year, then calendar month.
func monthRank(key string) int {
	monPart, yearPart, ok := strings.Cut(key, " ")
	if !ok {
		return 1 << 30
	}
	m, okMonth := monthIndex(monPart)
	y, err := strconv.Atoi(yearPart)
	if !okMonth || err != nil {
		return 1 << 30
	}
	return y*12 + int(m)
}

func yearRank(key string) int {
	y, err := strconv.Atoi(key)
	if err != nil {
		return 1 << 30
	}
	return y
}

func weekRank(key string) time.Time {
	if mon, ok := ParseWeekLabel(key); ok {
		return mon
	}
	// unparseable keys sort last
	return time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
}
