package core

import (
	"errors"
	"strings"
	"time"
)

const (
	ModeWeek  ViewMode = "week"
	ModeMonth ViewMode = "month"
	ModeYear  ViewMode = "year"
)

// Uncategorized is the fallback bucket for records whose stored category is
// empty. Stored categories outside the fixed list are kept as-is.
const Uncategorized = "Uncategorized"

type (
	// ViewMode selects the active time granularity for charts and insights.
	ViewMode string

	// Expense is the sole domain entity. A zero Date marks a record whose
	// raw date could not be resolved; such records are excluded from every
	// aggregate but are never an error.
	Expense struct {
		ID          string
		OwnerID     string
		Amount      float64
		Category    string
		Description string
		Date        time.Time
		CreatedAt   time.Time
	}

	// RawRecord is the loosely typed shape delivered by bulk imports of
	// legacy store exports. Amount and Date carry whatever the source held.
	RawRecord struct {
		ID          string    `json:"id"`
		OwnerID     string    `json:"ownerId"`
		Amount      any       `json:"amount"`
		Category    string    `json:"category"`
		Description string    `json:"description"`
		Date        any       `json:"date"`
		CreatedAt   time.Time `json:"createdAt"`
	}
)

// Categories is the fixed set accepted on the write path.
var Categories = []string{
	"Food",
	"Transport",
	"Entertainment",
	"Households",
	"Bills",
	"Shopping",
	"Electronics",
	"Others",
}

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidDate     = errors.New("invalid date")
)

// ValidCategory reports whether name is one of the fixed categories.
func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Validate checks an expense on the write path. The read path is deliberately
// more tolerant: stored records with arbitrary categories or broken dates are
// still aggregated (or skipped) without errors.
func (e Expense) Validate() error {
	if e.Amount < 0 {
		return ErrInvalidAmount
	}
	if !ValidCategory(e.Category) {
		return ErrInvalidCategory
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(e.Description)) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// CategoryOrFallback returns the stored category, or Uncategorized when the
// record carries none.
func (e Expense) CategoryOrFallback() string {
	if strings.TrimSpace(e.Category) == "" {
		return Uncategorized
	}
	return e.Category
}
