// Package storage is the SQLite document store behind the service: expense
// CRUD scoped by owner, user accounts for the identity layer, and the
// bookkeeping columns the export worker drives.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"belanja/internal/auth"
	"belanja/internal/core"
)

const (
	dayLayout = "2006-01-02"

	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

var ErrNotFound = errors.New("not found")

type Repository struct {
	db *sql.DB
}

// interface conformance for the auth layer
var _ auth.UserStorage = (*Repository)(nil)

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable. Used by readiness checks.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ---- users (auth.UserStorage) ----

func (r *Repository) CreateUser(ctx context.Context, u *auth.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, display_name, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.DisplayName, u.PasswordHash, u.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, password_hash, created_at FROM users WHERE email = ?`, email))
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (*auth.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, password_hash, created_at FROM users WHERE id = ?`, id))
}

func (r *Repository) scanUser(row *sql.Row) (*auth.User, error) {
	var u auth.User
	var createdAt string
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.CreatedAt = parseTimestamp(createdAt)
	return &u, nil
}

// ---- expenses ----

// CreateExpense inserts a new expense and returns its generated id. A zero
// Date is stored as NULL: the record exists but belongs to no bucket.
func (r *Repository) CreateExpense(ctx context.Context, e core.Expense) (string, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, owner_id, amount, category, description, spent_on, created_at, sync_status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.OwnerID, e.Amount, e.Category, e.Description,
		dayOrNull(e.Date), e.CreatedAt.Format(time.RFC3339Nano), SyncPending,
	)
	if err != nil {
		return "", fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"expense_id", e.ID,
		"owner_id", e.OwnerID,
		"amount", e.Amount,
		"category", e.Category)
	return e.ID, nil
}

// UpdateExpenseParams carries the optional fields of a partial update; nil
// pointers leave the stored value untouched.
type UpdateExpenseParams struct {
	Amount      *float64
	Category    *string
	Description *string
	Date        *time.Time
}

// UpdateExpense applies a partial update to an expense owned by ownerID and
// resets its export status so the change reaches the backup sheet.
func (r *Repository) UpdateExpense(ctx context.Context, id, ownerID string, p UpdateExpenseParams) error {
	current, err := r.GetExpense(ctx, id)
	if err != nil {
		return err
	}
	if current.OwnerID != ownerID {
		return ErrNotFound
	}

	if p.Amount != nil {
		current.Amount = *p.Amount
	}
	if p.Category != nil {
		current.Category = *p.Category
	}
	if p.Description != nil {
		current.Description = *p.Description
	}
	if p.Date != nil {
		current.Date = *p.Date
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET amount = ?, category = ?, description = ?, spent_on = ?, sync_status = ?
		 WHERE id = ? AND owner_id = ? AND deleted_at IS NULL`,
		current.Amount, current.Category, current.Description,
		dayOrNull(current.Date), SyncPending, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return oneRowAffected(res)
}

// SoftDeleteExpense marks an expense deleted; every read excludes it from
// then on.
func (r *Repository) SoftDeleteExpense(ctx context.Context, id, ownerID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET deleted_at = ? WHERE id = ? AND owner_id = ? AND deleted_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339Nano), id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("soft delete expense: %w", err)
	}
	return oneRowAffected(res)
}

func (r *Repository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, amount, category, description, spent_on, created_at
		 FROM expenses WHERE id = ? AND deleted_at IS NULL`, id)
	return scanExpense(row.Scan)
}

// ListExpenses returns every live expense of one owner, ordered by expense
// date ascending (records without a resolvable date come first), then by
// creation time for a stable order within a day.
func (r *Repository) ListExpenses(ctx context.Context, ownerID string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, amount, category, description, spent_on, created_at
		 FROM expenses WHERE owner_id = ? AND deleted_at IS NULL
		 ORDER BY spent_on, created_at`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ---- export bookkeeping ----

// GetPendingExport returns ids of live expenses not yet appended to the
// backup sheet, oldest first.
func (r *Repository) GetPendingExport(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM expenses WHERE sync_status = ? AND deleted_at IS NULL
		 ORDER BY created_at LIMIT ?`, SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending export: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pending id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repository) MarkExported(ctx context.Context, id string) error {
	return r.setSyncStatus(ctx, id, SyncDone)
}

func (r *Repository) MarkExportError(ctx context.Context, id string) error {
	return r.setSyncStatus(ctx, id, SyncError)
}

func (r *Repository) setSyncStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET sync_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("set sync status: %w", err)
	}
	return oneRowAffected(res)
}

// ---- helpers ----

func scanExpense(scan func(...any) error) (core.Expense, error) {
	var (
		e         core.Expense
		spentOn   sql.NullTime
		createdAt string
	)
	err := scan(&e.ID, &e.OwnerID, &e.Amount, &e.Category, &e.Description, &spentOn, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}
	if spentOn.Valid {
		// The DATE column comes back as a time.Time from the driver.
		// Pin it to midnight UTC so it matches dates that never touched
		// the database.
		y, m, d := spentOn.Time.Date()
		e.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	e.CreatedAt = parseTimestamp(createdAt)
	return e, nil
}

func dayOrNull(d time.Time) any {
	if d.IsZero() {
		return nil
	}
	return d.Format(dayLayout)
}

func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	return time.Time{}
}

func oneRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
