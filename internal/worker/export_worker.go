// Package worker exports locally stored expenses to an external spreadsheet.
// Change messages drive the fast path; a periodic sweep over pending rows
// covers lost messages and downtime.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"belanja/internal/bus"
	"belanja/internal/core"
	"belanja/internal/sheets"
	"belanja/internal/storage"
)

// ExportStore is the bookkeeping slice of the repository the worker needs.
type ExportStore interface {
	GetExpense(ctx context.Context, id string) (core.Expense, error)
	GetPendingExport(ctx context.Context, limit int) ([]string, error)
	MarkExported(ctx context.Context, id string) error
	MarkExportError(ctx context.Context, id string) error
}

type ExportWorker struct {
	store     ExportStore
	appender  sheets.RowAppender
	batchSize int
}

func NewExportWorker(store ExportStore, appender sheets.RowAppender, batchSize int) *ExportWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &ExportWorker{store: store, appender: appender, batchSize: batchSize}
}

// HandleChange exports the expense named by a change message. Updates re-queue
// the row on the write path, so created and updated are handled the same way.
// Deletes need no spreadsheet action; the row stays as an audit trail.
func (w *ExportWorker) HandleChange(ctx context.Context, msg *bus.ChangeMessage) error {
	if msg.Op == bus.OpDeleted {
		return nil
	}

	slog.InfoContext(ctx, "Processing change message",
		"expense_id", msg.ExpenseID,
		"op", msg.Op)

	if err := w.exportOne(ctx, msg.ExpenseID); err != nil {
		// Deleted between publish and consume. Ack, the sweep will not
		// pick it up either.
		if errors.Is(err, storage.ErrNotFound) {
			slog.WarnContext(ctx, "Expense gone before export", "expense_id", msg.ExpenseID)
			return nil
		}
		return err
	}
	return nil
}

// ProcessPending exports one batch of rows still marked pending. It is the
// backup mechanism for lost change messages.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	ids, err := w.store.GetPendingExport(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending export: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(ids))

	for _, id := range ids {
		if err := w.exportOne(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to export expense", "expense_id", id, "error", err)
		}
	}
	return nil
}

// StartupSweep drains the pending backlog accumulated during downtime. It
// uses a larger batch than the periodic sweep.
func (w *ExportWorker) StartupSweep(ctx context.Context) error {
	ids, err := w.store.GetPendingExport(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending export for startup sweep: %w", err)
	}
	if len(ids) == 0 {
		slog.InfoContext(ctx, "No pending exports found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending exports on startup", "count", len(ids))

	exported := 0
	failed := 0
	for _, id := range ids {
		if err := w.exportOne(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to export expense during startup", "expense_id", id, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Startup sweep completed",
		"total", len(ids),
		"exported", exported,
		"errors", failed)
	return nil
}

func (w *ExportWorker) exportOne(ctx context.Context, id string) error {
	e, err := w.store.GetExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("get expense: %w", err)
	}

	ref, err := w.appender.AppendExpense(ctx, e)
	if err != nil {
		if markErr := w.store.MarkExportError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "expense_id", id, "error", markErr)
		}
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.store.MarkExported(ctx, id); err != nil {
		// The row is on the sheet; only the bookkeeping failed. The next
		// sweep will append a duplicate, which we prefer over a lost row.
		slog.ErrorContext(ctx, "Failed to mark as exported", "expense_id", id, "error", err)
	}

	slog.InfoContext(ctx, "Exported expense",
		"expense_id", id,
		"sheet_ref", ref,
		"amount", e.Amount)
	return nil
}
