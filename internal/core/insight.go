package core

import (
	"fmt"
	"strings"
)

// Narrative templates. Amounts always render with two decimals, percentage
// changes with one; every statement is assembled from these so tests can
// pin the exact output.
const (
	msgNoData        = "No data yet to analyze your spending."
	msgSelectWeek    = "Select a week to view spending insights."
	msgEmptyPeriod   = "No spending recorded for this period."
	fmtSnapshot      = "Spending summary for %s."
	fmtTopCategory   = "Top category: %s (RM %.2f)."
	fmtTopWeekday    = "Busiest day: %s (RM %.2f)."
	fmtTotal         = "Total spent: RM %.2f."
	fmtAveragePerDay = "Average per day: RM %.2f."
	fmtDeltaUp       = "Up %.1f%% vs last week."
	fmtDeltaDown     = "Down %.1f%% vs last week."
	msgDeltaFlat     = "Unchanged vs last week."
	msgDeltaSteady   = "Spending is steady vs last week."
	msgDeltaStarted  = "You started spending this week."
	fmtNoSpendDays   = "No spending on %s."
)

// BuildInsights derives the ordered narrative statements for the selected
// period. It re-derives everything from scratch on every call: the engine
// holds no state between invocations, so identical input yields identical
// output.
//
// Statement order is fixed: snapshot, top category, busiest weekday, total,
// average per day, then (week mode only) the week-over-week delta and the
// list of weekdays without spending.
func BuildInsights(records []Expense, mode ViewMode, p Period) []string {
	if len(records) == 0 {
		return []string{msgNoData}
	}
	if mode == ModeWeek && p.IsZero() {
		return []string{msgSelectWeek}
	}

	period := FilterPeriod(records, p)
	if len(period) == 0 {
		return []string{msgEmptyPeriod}
	}

	var (
		total   float64
		byDay   = NewTotals()
		byCat   = NewTotals()
		byWkday = NewTotals()
	)
	for _, e := range period {
		total += e.Amount
		byDay.Add(e.Date.Format("2006-01-02"), e.Amount)
		byCat.Add(e.CategoryOrFallback(), e.Amount)
		byWkday.Add(WeekdayName(e.Date), e.Amount)
	}
	days := byDay.Len()
	if days < 1 {
		days = 1
	}

	out := []string{fmt.Sprintf(fmtSnapshot, p.Key())}
	if cat, amt, ok := byCat.Top(); ok {
		out = append(out, fmt.Sprintf(fmtTopCategory, cat, amt))
	}
	if day, amt, ok := byWkday.Top(); ok {
		out = append(out, fmt.Sprintf(fmtTopWeekday, day, amt))
	}
	out = append(out,
		fmt.Sprintf(fmtTotal, total),
		fmt.Sprintf(fmtAveragePerDay, total/float64(days)),
	)

	if mode == ModeWeek {
		out = append(out, weekDelta(records, p, total))
		if missing := noSpendWeekdays(byWkday); len(missing) > 0 {
			out = append(out, fmt.Sprintf(fmtNoSpendDays, strings.Join(missing, ", ")))
		}
	}
	return out
}

// weekDelta classifies the current week's total against the immediately
// preceding week, computed over the unfiltered record set.
func weekDelta(records []Expense, p Period, current float64) string {
	var previous float64
	for _, e := range FilterPeriod(records, p.Previous()) {
		previous += e.Amount
	}

	switch {
	case previous == 0 && current == 0:
		return msgDeltaSteady
	case previous == 0:
		return msgDeltaStarted
	}

	change := (current - previous) / previous * 100
	switch {
	case change > 0:
		return fmt.Sprintf(fmtDeltaUp, change)
	case change < 0:
		return fmt.Sprintf(fmtDeltaDown, -change)
	default:
		return msgDeltaFlat
	}
}

// noSpendWeekdays lists, in Monday..Sunday order, the weekday names absent
// from the per-weekday totals.
func noSpendWeekdays(byWkday *Totals) []string {
	var missing []string
	for _, name := range WeekdayNames {
		if _, seen := byWkday.sums[name]; !seen {
			missing = append(missing, name)
		}
	}
	return missing
}
