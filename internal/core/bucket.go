package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Fixed English name tables. Labels must come out identical on every host,
// so the runtime locale is never consulted.
var shortMonths = [...]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// WeekdayNames runs Monday through Sunday, matching the week convention.
var WeekdayNames = [...]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// MondayOf shifts a date back to the Monday of its week, at midnight UTC.
// Weeks run Monday through Sunday: a Sunday shifts back six days.
func MondayOf(d time.Time) time.Time {
	d = civil(d)
	if d.Weekday() == time.Sunday {
		return d.AddDate(0, 0, -6)
	}
	return d.AddDate(0, 0, -(int(d.Weekday()) - 1))
}

// WeekdayName returns the fixed English name for a date's weekday.
func WeekdayName(d time.Time) string {
	if d.Weekday() == time.Sunday {
		return WeekdayNames[6]
	}
	return WeekdayNames[int(d.Weekday())-1]
}

// WeekLabel renders the week bucket key for a date: the Monday and Sunday of
// its week joined by an en dash, with the Monday's year.
func WeekLabel(d time.Time) string {
	mon := MondayOf(d)
	sun := mon.AddDate(0, 0, 6)
	return fmt.Sprintf("%s %d – %s %d, %d",
		shortMonths[mon.Month()-1], mon.Day(),
		shortMonths[sun.Month()-1], sun.Day(),
		mon.Year())
}

// MonthLabel renders the month bucket key, e.g. "Oct 2025". The year is
// always present so the same month of different years never collides.
func MonthLabel(d time.Time) string {
	return monthKey(d.Month(), d.Year())
}

// YearLabel renders the year bucket key, e.g. "2025".
func YearLabel(d time.Time) string {
	return strconv.Itoa(d.Year())
}

func monthKey(m time.Month, year int) string {
	return shortMonths[m-1] + " " + strconv.Itoa(year)
}

// BucketKey returns the bucket key for a date under the given view mode.
func BucketKey(mode ViewMode, d time.Time) string {
	switch mode {
	case ModeWeek:
		return WeekLabel(d)
	case ModeYear:
		return YearLabel(d)
	default:
		return MonthLabel(d)
	}
}

// ParseWeekLabel recovers the Monday a week label denotes. Only labels
// produced by WeekLabel are accepted; anything else reports false.
func ParseWeekLabel(label string) (time.Time, bool) {
	start, rest, ok := strings.Cut(label, " – ")
	if !ok {
		return time.Time{}, false
	}
	_, yearPart, ok := strings.Cut(rest, ", ")
	if !ok {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(strings.TrimSpace(yearPart))
	if err != nil {
		return time.Time{}, false
	}
	monPart, dayPart, ok := strings.Cut(strings.TrimSpace(start), " ")
	if !ok {
		return time.Time{}, false
	}
	month, ok := monthIndex(monPart)
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayPart)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

func monthIndex(short string) (time.Month, bool) {
	for i, m := range shortMonths {
		if m == short {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

// Period identifies the currently selected bucket: the Monday of a week, the
// first day of a month, or January 1st of a year. A zero Start means nothing
// is selected.
type Period struct {
	Mode  ViewMode
	Start time.Time
}

// WeekPeriod selects the week containing d.
func WeekPeriod(d time.Time) Period {
	return Period{Mode: ModeWeek, Start: MondayOf(d)}
}

// MonthPeriod selects a specific month.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Mode: ModeMonth, Start: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)}
}

// YearPeriod selects a whole year.
func YearPeriod(year int) Period {
	return Period{Mode: ModeYear, Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)}
}

// IsZero reports whether no period is selected.
func (p Period) IsZero() bool {
	return p.Start.IsZero()
}

// Key renders the bucket key the period denotes.
func (p Period) Key() string {
	if p.IsZero() {
		return ""
	}
	return BucketKey(p.Mode, p.Start)
}

// Previous returns the immediately preceding period: one week, one month or
// one year back. Derived by date arithmetic on Start, never by re-parsing a
// generated label.
func (p Period) Previous() Period {
	switch p.Mode {
	case ModeWeek:
		return Period{Mode: ModeWeek, Start: p.Start.AddDate(0, 0, -7)}
	case ModeYear:
		return Period{Mode: ModeYear, Start: p.Start.AddDate(-1, 0, 0)}
	default:
		return Period{Mode: ModeMonth, Start: p.Start.AddDate(0, -1, 0)}
	}
}

// Contains reports whether a date falls inside the selected period.
func (p Period) Contains(d time.Time) bool {
	if p.IsZero() || d.IsZero() {
		return false
	}
	switch p.Mode {
	case ModeWeek:
		return MondayOf(d).Equal(p.Start)
	case ModeYear:
		return d.Year() == p.Start.Year()
	default:
		return d.Year() == p.Start.Year() && d.Month() == p.Start.Month()
	}
}
