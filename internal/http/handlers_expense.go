package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"belanja/internal/core"
	"belanja/internal/storage"
)

const dayLayout = "2006-01-02"

type expenseRequest struct {
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

type expenseUpdateRequest struct {
	Amount      *float64 `json:"amount"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Date        *string  `json:"date"`
}

type expenseResponse struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	resp := expenseResponse{
		ID:          e.ID,
		Amount:      e.Amount,
		Category:    e.CategoryOrFallback(),
		Description: e.Description,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
	if !e.Date.IsZero() {
		resp.Date = e.Date.Format(dayLayout)
	}
	return resp
}

func toExpenseResponses(records []core.Expense) []expenseResponse {
	out := make([]expenseResponse, 0, len(records))
	for _, e := range records {
		out = append(out, toExpenseResponse(e))
	}
	return out
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	records, err := s.expenses.List(r.Context(), ownerID(r.Context()))
	if err != nil {
		slog.ErrorContext(r.Context(), "List expenses failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list expenses")
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponses(records))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !decodeBody(w, r, &req) {
		return
	}

	day, err := time.Parse(dayLayout, req.Date)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "date must be YYYY-MM-DD")
		return
	}

	e := core.Expense{
		OwnerID:     ownerID(r.Context()),
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        day,
		CreatedAt:   time.Now().UTC(),
	}
	id, err := s.expenses.Create(r.Context(), e)
	if err != nil {
		if errors.Is(err, core.ErrInvalidAmount) || errors.Is(err, core.ErrInvalidCategory) || errors.Is(err, core.ErrInvalidDate) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Create expense failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not save expense")
		return
	}

	s.records.Delete(e.OwnerID)
	e.ID = id
	writeJSON(w, http.StatusCreated, toExpenseResponse(e))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req expenseUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	params := storage.UpdateExpenseParams{
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
	}
	if req.Date != nil {
		day, err := time.Parse(dayLayout, *req.Date)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "date must be YYYY-MM-DD")
			return
		}
		params.Date = &day
	}

	err := s.expenses.Update(r.Context(), id, ownerID(r.Context()), params)
	switch {
	case err == nil:
		s.records.Delete(ownerID(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "expense not found")
	case errors.Is(err, core.ErrInvalidAmount), errors.Is(err, core.ErrInvalidCategory):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Update expense failed", "expense_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not update expense")
	}
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := s.expenses.Delete(r.Context(), id, ownerID(r.Context()))
	switch {
	case err == nil:
		s.records.Delete(ownerID(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "expense not found")
	default:
		slog.ErrorContext(r.Context(), "Delete expense failed", "expense_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not delete expense")
	}
}

type importResponse struct {
	Stored   int `json:"stored"`
	Dateless int `json:"dateless"`
}

// handleImportExpenses ingests a batch of loosely typed records. Records with
// unresolvable dates are stored too; they stay out of aggregates but are
// never rejected.
func (s *Server) handleImportExpenses(w http.ResponseWriter, r *http.Request) {
	var raw []core.RawRecord
	if !decodeBody(w, r, &raw) {
		return
	}

	stored, dateless, err := s.expenses.Import(r.Context(), ownerID(r.Context()), raw)
	if err != nil {
		slog.ErrorContext(r.Context(), "Import failed", "stored", stored, "error", err)
		writeError(w, http.StatusInternalServerError, "import failed")
		return
	}
	s.records.Delete(ownerID(r.Context()))
	writeJSON(w, http.StatusOK, importResponse{Stored: stored, Dateless: dateless})
}
