package core

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMondayOf(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{name: "monday stays", in: date(2025, 1, 6), want: date(2025, 1, 6)},
		{name: "wednesday shifts back two", in: date(2025, 1, 8), want: date(2025, 1, 6)},
		{name: "sunday shifts back six", in: date(2025, 1, 12), want: date(2025, 1, 6)},
		{name: "saturday shifts back five", in: date(2025, 1, 11), want: date(2025, 1, 6)},
		{name: "time of day zeroed", in: time.Date(2025, 1, 8, 23, 15, 0, 0, time.UTC), want: date(2025, 1, 6)},
		{name: "week spanning new year", in: date(2025, 1, 3), want: date(2024, 12, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MondayOf(tt.in); !got.Equal(tt.want) {
				t.Errorf("MondayOf(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWeekLabel(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{name: "mid-month week", in: date(2025, 1, 8), want: "Jan 6 – Jan 12, 2025"},
		{name: "week crossing months", in: date(2025, 1, 30), want: "Jan 27 – Feb 2, 2025"},
		{name: "week crossing years keeps monday's year", in: date(2025, 1, 1), want: "Dec 30 – Jan 5, 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekLabel(tt.in); got != tt.want {
				t.Errorf("WeekLabel(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// Every date inside a Monday..Sunday span shares one label; the next week's
// dates never do.
func TestWeekLabelSpansMondayToSunday(t *testing.T) {
	monday := date(2025, 3, 10)
	label := WeekLabel(monday)

	for offset := 0; offset < 7; offset++ {
		d := monday.AddDate(0, 0, offset)
		if got := WeekLabel(d); got != label {
			t.Errorf("WeekLabel(%v) = %q, want %q (same week)", d, got, label)
		}
	}
	next := monday.AddDate(0, 0, 7)
	if got := WeekLabel(next); got == label {
		t.Errorf("WeekLabel(%v) = %q, want a different label from %q", next, got, label)
	}
}

func TestMonthAndYearLabels(t *testing.T) {
	if got := MonthLabel(date(2025, 10, 14)); got != "Oct 2025" {
		t.Errorf("MonthLabel = %q, want %q", got, "Oct 2025")
	}
	// Same month name, different years must not collide.
	if MonthLabel(date(2024, 10, 1)) == MonthLabel(date(2025, 10, 1)) {
		t.Error("MonthLabel collides across years")
	}
	if got := YearLabel(date(2025, 1, 1)); got != "2025" {
		t.Errorf("YearLabel = %q, want %q", got, "2025")
	}
}

func TestParseWeekLabelRoundTrip(t *testing.T) {
	mondays := []time.Time{
		date(2025, 1, 6),
		date(2024, 12, 30),
		date(2025, 6, 2),
	}
	for _, mon := range mondays {
		label := WeekLabel(mon)
		got, ok := ParseWeekLabel(label)
		if !ok {
			t.Fatalf("ParseWeekLabel(%q) not ok", label)
		}
		if !got.Equal(mon) {
			t.Errorf("ParseWeekLabel(%q) = %v, want %v", label, got, mon)
		}
	}

	for _, bad := range []string{"", "Oct 2025", "2025", "Foo 1 – Bar 2, 2025"} {
		if _, ok := ParseWeekLabel(bad); ok {
			t.Errorf("ParseWeekLabel(%q) ok, want failure", bad)
		}
	}
}

func TestPeriodContains(t *testing.T) {
	tests := []struct {
		name string
		p    Period
		d    time.Time
		want bool
	}{
		{name: "week hit", p: WeekPeriod(date(2025, 1, 6)), d: date(2025, 1, 12), want: true},
		{name: "week miss", p: WeekPeriod(date(2025, 1, 6)), d: date(2025, 1, 13), want: false},
		{name: "month hit", p: MonthPeriod(2025, time.October), d: date(2025, 10, 31), want: true},
		{name: "month wrong year", p: MonthPeriod(2025, time.October), d: date(2024, 10, 1), want: false},
		{name: "year hit", p: YearPeriod(2025), d: date(2025, 7, 4), want: true},
		{name: "zero date never matches", p: YearPeriod(2025), d: time.Time{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Contains(tt.d); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.d, got, tt.want)
			}
		})
	}
}

func TestPeriodPrevious(t *testing.T) {
	week := WeekPeriod(date(2025, 1, 6)).Previous()
	if !week.Start.Equal(date(2024, 12, 30)) {
		t.Errorf("previous week start = %v, want %v", week.Start, date(2024, 12, 30))
	}
	month := MonthPeriod(2025, time.January).Previous()
	if month.Start.Year() != 2024 || month.Start.Month() != time.December {
		t.Errorf("previous month = %v, want Dec 2024", month.Start)
	}
}
