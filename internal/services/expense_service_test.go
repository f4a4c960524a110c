package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"belanja/internal/bus"
	"belanja/internal/core"
	"belanja/internal/storage"
)

type fakeStore struct {
	created []core.Expense
	updated []string
	deleted []string
	failing bool
}

func (f *fakeStore) CreateExpense(_ context.Context, e core.Expense) (string, error) {
	if f.failing {
		return "", errors.New("disk full")
	}
	f.created = append(f.created, e)
	return "id-1", nil
}

func (f *fakeStore) UpdateExpense(_ context.Context, id, _ string, _ storage.UpdateExpenseParams) error {
	if f.failing {
		return storage.ErrNotFound
	}
	f.updated = append(f.updated, id)
	return nil
}

func (f *fakeStore) SoftDeleteExpense(_ context.Context, id, _ string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) GetExpense(_ context.Context, _ string) (core.Expense, error) {
	return core.Expense{}, storage.ErrNotFound
}

func (f *fakeStore) ListExpenses(_ context.Context, _ string) ([]core.Expense, error) {
	return f.created, nil
}

type fakePublisher struct {
	messages []*bus.ChangeMessage
	err      error
}

func (f *fakePublisher) PublishChange(_ context.Context, msg *bus.ChangeMessage) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msg)
	return nil
}

func validExpense() core.Expense {
	return core.Expense{
		OwnerID:     "u1",
		Amount:      12.50,
		Category:    "Food",
		Description: "lunch",
		Date:        time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreatePublishesChange(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	svc := NewExpenseService(store, pub)

	id, err := svc.Create(context.Background(), validExpense())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if id != "id-1" {
		t.Errorf("Create() id = %q, want id-1", id)
	}
	if len(pub.messages) != 1 {
		t.Fatalf("published %d messages, want 1", len(pub.messages))
	}
	if got := pub.messages[0]; got.Op != bus.OpCreated || got.ExpenseID != "id-1" || got.OwnerID != "u1" {
		t.Errorf("unexpected message: %+v", got)
	}
}

func TestCreateRejectsInvalidExpense(t *testing.T) {
	store := &fakeStore{}
	svc := NewExpenseService(store, &fakePublisher{})

	e := validExpense()
	e.Amount = -5
	if _, err := svc.Create(context.Background(), e); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("Create() error = %v, want ErrInvalidAmount", err)
	}
	if len(store.created) != 0 {
		t.Errorf("invalid expense reached the store")
	}
}

func TestCreateSurvivesPublishFailure(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewExpenseService(store, pub)

	id, err := svc.Create(context.Background(), validExpense())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if id != "id-1" {
		t.Errorf("Create() id = %q, want id-1", id)
	}
	if len(store.created) != 1 {
		t.Errorf("expense not stored despite publish failure")
	}
}

func TestUpdateValidatesFields(t *testing.T) {
	svc := NewExpenseService(&fakeStore{}, &fakePublisher{})
	ctx := context.Background()

	bad := -1.0
	if err := svc.Update(ctx, "id-1", "u1", storage.UpdateExpenseParams{Amount: &bad}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("negative amount: error = %v, want ErrInvalidAmount", err)
	}
	cat := "Gambling"
	if err := svc.Update(ctx, "id-1", "u1", storage.UpdateExpenseParams{Category: &cat}); !errors.Is(err, core.ErrInvalidCategory) {
		t.Errorf("unknown category: error = %v, want ErrInvalidCategory", err)
	}
}

func TestUpdateNotFoundDoesNotPublish(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewExpenseService(&fakeStore{failing: true}, pub)

	amt := 3.0
	err := svc.Update(context.Background(), "missing", "u1", storage.UpdateExpenseParams{Amount: &amt})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
	if len(pub.messages) != 0 {
		t.Errorf("published %d messages for failed update", len(pub.messages))
	}
}

func TestDeletePublishesChange(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewExpenseService(&fakeStore{}, pub)

	if err := svc.Delete(context.Background(), "id-1", "u1"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if len(pub.messages) != 1 || pub.messages[0].Op != bus.OpDeleted {
		t.Errorf("expected one deleted message, got %+v", pub.messages)
	}
}

func TestImportCountsDatelessRecords(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	svc := NewExpenseService(store, pub)

	raw := []core.RawRecord{
		{ID: "a", Amount: 10.0, Category: "Food", Date: "2025-01-06"},
		{ID: "b", Amount: "12.5", Category: "Bills", Date: "not a date"},
		{ID: "c", Amount: nil, Category: "", Date: nil},
	}
	stored, dateless, err := svc.Import(context.Background(), "u1", raw)
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if stored != 3 {
		t.Errorf("stored = %d, want 3", stored)
	}
	if dateless != 2 {
		t.Errorf("dateless = %d, want 2", dateless)
	}
	if len(pub.messages) != 3 {
		t.Errorf("published %d messages, want 3", len(pub.messages))
	}
	for _, e := range store.created {
		if e.OwnerID != "u1" {
			t.Errorf("imported record owner = %q, want u1", e.OwnerID)
		}
	}
}
