package sheets

import (
	"context"

	"belanja/internal/core"
)

// RowAppender is the outbound port for the spreadsheet export. Implementations
// append one row per expense and return a reference to the written row.
type RowAppender interface {
	AppendExpense(ctx context.Context, e core.Expense) (rowRef string, err error)
}
