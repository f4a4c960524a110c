package core

import "time"

// Totals is an insertion-ordered mapping from key to summed amount. Order is
// first-encountered, so Top tie-breaks are stable across runs with identical
// input order.
type Totals struct {
	keys []string
	sums map[string]float64
}

func NewTotals() *Totals {
	return &Totals{sums: make(map[string]float64)}
}

// Add accumulates v under key, registering the key on first sight.
func (t *Totals) Add(key string, v float64) {
	if _, ok := t.sums[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.sums[key] += v
}

// Keys returns the keys in insertion order. The returned slice is shared;
// callers must not mutate it.
func (t *Totals) Keys() []string {
	return t.keys
}

// Get returns the summed amount for key (0 when absent).
func (t *Totals) Get(key string) float64 {
	return t.sums[key]
}

// Len returns the number of distinct keys.
func (t *Totals) Len() int {
	return len(t.keys)
}

// Sum returns the grand total across every key.
func (t *Totals) Sum() float64 {
	var s float64
	for _, v := range t.sums {
		s += v
	}
	return s
}

// Top returns the highest-total key and its amount, even when every total
// is zero. Ties keep the key seen first. ok is false only for an empty
// mapping.
func (t *Totals) Top() (key string, amount float64, ok bool) {
	for _, k := range t.keys {
		v := t.sums[k]
		if !ok || v > amount {
			key, amount, ok = k, v, true
		}
	}
	return key, amount, ok
}

// CategoryTotals reduces records into category → summed amount, with the
// Uncategorized fallback for empty categories. Records with unresolvable
// dates are skipped silently; they belong to no period.
func CategoryTotals(records []Expense) *Totals {
	t := NewTotals()
	for _, e := range records {
		if e.Date.IsZero() {
			continue
		}
		t.Add(e.CategoryOrFallback(), e.Amount)
	}
	return t
}

// BucketTotals reduces records into time-bucket key → summed amount for the
// given view mode. Month mode pre-seeds all twelve months of year so the
// time-series axis is gap-free; week and year modes only emit keys that hold
// at least one record.
func BucketTotals(mode ViewMode, year int, records []Expense) *Totals {
	t := NewTotals()
	if mode == ModeMonth {
		for m := time.January; m <= time.December; m++ {
			t.Add(monthKey(m, year), 0)
		}
	}
	for _, e := range records {
		if e.Date.IsZero() {
			continue
		}
		t.Add(BucketKey(mode, e.Date), e.Amount)
	}
	return t
}

// FilterPeriod returns the records falling exactly inside the selected
// period: the pie chart's record set, and the insight engine's.
func FilterPeriod(records []Expense, p Period) []Expense {
	var out []Expense
	for _, e := range records {
		if p.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// FilterLine returns the record set feeding the time-series chart. It is
// broader than the pie set: month mode spans the whole selected year, year
// mode spans everything, week mode stays on the exact week.
func FilterLine(records []Expense, p Period) []Expense {
	switch p.Mode {
	case ModeYear:
		var out []Expense
		for _, e := range records {
			if !e.Date.IsZero() {
				out = append(out, e)
			}
		}
		return out
	case ModeMonth:
		return FilterPeriod(records, YearPeriod(p.Start.Year()))
	default:
		return FilterPeriod(records, p)
	}
}
