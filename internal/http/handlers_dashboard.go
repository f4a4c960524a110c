package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"belanja/internal/core"
)

// parsePeriod resolves the selected period from query parameters.
//
//	mode:  week | month | year (default month)
//	week:  any date (YYYY-MM-DD) inside the wanted week; absent means no
//	       week is selected yet
//	month: 1..12 (default current month)
//	year:  4-digit year (default current year)
func parsePeriod(r *http.Request) (core.ViewMode, core.Period, bool) {
	q := r.URL.Query()
	now := time.Now().UTC()

	mode := core.ViewMode(q.Get("mode"))
	switch mode {
	case core.ModeWeek, core.ModeMonth, core.ModeYear:
	case "":
		mode = core.ModeMonth
	default:
		return "", core.Period{}, false
	}

	year := now.Year()
	if v := q.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return "", core.Period{}, false
		}
		year = y
	}

	switch mode {
	case core.ModeWeek:
		v := q.Get("week")
		if v == "" {
			return mode, core.Period{Mode: core.ModeWeek}, true
		}
		d, err := time.Parse(dayLayout, v)
		if err != nil {
			return "", core.Period{}, false
		}
		return mode, core.WeekPeriod(d), true
	case core.ModeYear:
		return mode, core.YearPeriod(year), true
	default:
		month := int(now.Month())
		if v := q.Get("month"); v != "" {
			m, err := strconv.Atoi(v)
			if err != nil || m < 1 || m > 12 {
				return "", core.Period{}, false
			}
			month = m
		}
		return mode, core.MonthPeriod(year, time.Month(month)), true
	}
}

type chartPoint struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

func chartPoints(t *core.Totals, keys []string) []chartPoint {
	out := make([]chartPoint, 0, len(keys))
	for _, k := range keys {
		out = append(out, chartPoint{Label: k, Amount: t.Get(k)})
	}
	return out
}

func (s *Server) dashboardRecords(w http.ResponseWriter, r *http.Request) ([]core.Expense, bool) {
	owner := ownerID(r.Context())
	if records, ok := s.records.Get(owner); ok {
		return records, true
	}

	records, err := s.expenses.List(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "List expenses failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load expenses")
		return nil, false
	}
	s.records.Set(owner, records)
	return records, true
}

// handleDashboardCategories serves the pie chart: per-category totals over
// the selected period, in first-encountered order.
func (s *Server) handleDashboardCategories(w http.ResponseWriter, r *http.Request) {
	_, p, ok := parsePeriod(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid period parameters")
		return
	}
	records, ok := s.dashboardRecords(w, r)
	if !ok {
		return
	}

	totals := core.CategoryTotals(core.FilterPeriod(records, p))
	writeJSON(w, http.StatusOK, chartPoints(totals, totals.Keys()))
}

// handleDashboardTrend serves the time-series chart: bucket totals over the
// line filter set, axis-sorted. Month mode always yields twelve points.
func (s *Server) handleDashboardTrend(w http.ResponseWriter, r *http.Request) {
	mode, p, ok := parsePeriod(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid period parameters")
		return
	}
	records, ok := s.dashboardRecords(w, r)
	if !ok {
		return
	}

	axisYear := p.Start.Year()
	if p.IsZero() {
		axisYear = time.Now().UTC().Year()
	}
	totals := core.BucketTotals(mode, axisYear, core.FilterLine(records, p))
	writeJSON(w, http.StatusOK, chartPoints(totals, core.SortAxis(mode, totals.Keys())))
}

type insightsResponse struct {
	Statements []string `json:"statements"`
}

func (s *Server) handleDashboardInsights(w http.ResponseWriter, r *http.Request) {
	mode, p, ok := parsePeriod(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid period parameters")
		return
	}
	records, ok := s.dashboardRecords(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, insightsResponse{Statements: core.BuildInsights(records, mode, p)})
}
