// Package services orchestrates writes across the local store and the
// change-event bus: persist first, announce after. A failed announcement
// never fails the request; the periodic export sweep and the next live
// reload cover for lost messages.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"belanja/internal/bus"
	"belanja/internal/core"
	"belanja/internal/storage"
)

// ExpenseStore is the slice of the repository this service needs.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e core.Expense) (string, error)
	UpdateExpense(ctx context.Context, id, ownerID string, p storage.UpdateExpenseParams) error
	SoftDeleteExpense(ctx context.Context, id, ownerID string) error
	GetExpense(ctx context.Context, id string) (core.Expense, error)
	ListExpenses(ctx context.Context, ownerID string) ([]core.Expense, error)
}

// ChangePublisher announces expense changes to interested consumers.
type ChangePublisher interface {
	PublishChange(ctx context.Context, msg *bus.ChangeMessage) error
}

type ExpenseService struct {
	store     ExpenseStore
	publisher ChangePublisher
}

func NewExpenseService(store ExpenseStore, publisher ChangePublisher) *ExpenseService {
	return &ExpenseService{store: store, publisher: publisher}
}

// Create validates and persists a new expense, then announces it.
func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	id, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return "", fmt.Errorf("save expense: %w", err)
	}
	s.announce(ctx, id, e.OwnerID, bus.OpCreated)
	return id, nil
}

// Update applies a partial update to an expense owned by ownerID.
func (s *ExpenseService) Update(ctx context.Context, id, ownerID string, p storage.UpdateExpenseParams) error {
	if p.Amount != nil && *p.Amount < 0 {
		return core.ErrInvalidAmount
	}
	if p.Category != nil && !core.ValidCategory(*p.Category) {
		return core.ErrInvalidCategory
	}
	if err := s.store.UpdateExpense(ctx, id, ownerID, p); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	s.announce(ctx, id, ownerID, bus.OpUpdated)
	return nil
}

// Delete soft-deletes an expense owned by ownerID.
func (s *ExpenseService) Delete(ctx context.Context, id, ownerID string) error {
	if err := s.store.SoftDeleteExpense(ctx, id, ownerID); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.announce(ctx, id, ownerID, bus.OpDeleted)
	return nil
}

// List returns the owner's full record set ordered by date.
func (s *ExpenseService) List(ctx context.Context, ownerID string) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx, ownerID)
}

// Import persists a batch of loosely typed records (a legacy store export).
// Amounts are coerced, dates normalized; records whose date cannot be
// resolved are stored anyway and simply never join a bucket. The count of
// records with unresolvable dates is returned alongside the stored total.
func (s *ExpenseService) Import(ctx context.Context, ownerID string, raw []core.RawRecord) (stored, dateless int, err error) {
	for _, e := range core.SanitizeRecords(raw) {
		e.OwnerID = ownerID
		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now().UTC()
		}
		id, cerr := s.store.CreateExpense(ctx, e)
		if cerr != nil {
			return stored, dateless, fmt.Errorf("import record: %w", cerr)
		}
		stored++
		if e.Date.IsZero() {
			dateless++
		}
		s.announce(ctx, id, ownerID, bus.OpCreated)
	}
	return stored, dateless, nil
}

func (s *ExpenseService) announce(ctx context.Context, id, ownerID, op string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishChange(ctx, bus.NewChangeMessage(id, ownerID, op)); err != nil {
		// Local write already succeeded; consumers recover via the
		// pending-export sweep and their next full reload.
		slog.ErrorContext(ctx, "Failed to publish change message",
			"expense_id", id,
			"owner_id", ownerID,
			"op", op,
			"error", err)
	}
}
