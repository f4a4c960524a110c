package live

import (
	"context"
	"errors"
	"testing"
	"time"

	"belanja/internal/bus"
	"belanja/internal/core"
)

type fakeLister struct {
	records map[string][]core.Expense
	calls   int
}

func (f *fakeLister) ListExpenses(_ context.Context, ownerID string) ([]core.Expense, error) {
	f.calls++
	if f.records == nil {
		return nil, errors.New("boom")
	}
	return f.records[ownerID], nil
}

func TestHubDeliversSnapshotsToOwnerSubscribers(t *testing.T) {
	lister := &fakeLister{records: map[string][]core.Expense{
		"u1": {{ID: "e1", OwnerID: "u1", Amount: 50}},
	}}
	hub := NewHub(lister)

	ch, cancel := hub.Subscribe("u1")
	defer cancel()
	otherCh, otherCancel := hub.Subscribe("u2")
	defer otherCancel()

	err := hub.HandleChange(context.Background(), bus.NewChangeMessage("e1", "u1", bus.OpCreated))
	if err != nil {
		t.Fatalf("HandleChange() error: %v", err)
	}

	select {
	case got := <-ch:
		if len(got) != 1 || got[0].ID != "e1" {
			t.Errorf("snapshot = %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}

	select {
	case got := <-otherCh:
		t.Errorf("other owner's subscriber received %+v", got)
	default:
	}
}

func TestHubSkipsOwnersWithoutSubscribers(t *testing.T) {
	lister := &fakeLister{records: map[string][]core.Expense{}}
	hub := NewHub(lister)

	if err := hub.HandleChange(context.Background(), bus.NewChangeMessage("e1", "u1", bus.OpDeleted)); err != nil {
		t.Fatalf("HandleChange() error: %v", err)
	}
	if lister.calls != 0 {
		t.Errorf("snapshot loaded for an owner nobody watches (%d calls)", lister.calls)
	}
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	lister := &fakeLister{records: map[string][]core.Expense{"u1": {}}}
	hub := NewHub(lister)

	ch, cancel := hub.Subscribe("u1")
	if hub.SubscriberCount("u1") != 1 {
		t.Fatalf("SubscriberCount = %d, want 1", hub.SubscriberCount("u1"))
	}

	cancel()
	cancel() // releasing twice is fine

	if hub.SubscriberCount("u1") != 0 {
		t.Errorf("SubscriberCount after cancel = %d, want 0", hub.SubscriberCount("u1"))
	}
	if _, open := <-ch; open {
		t.Error("channel still open after cancel")
	}
}

func TestHubReplacesStaleSnapshotForSlowSubscriber(t *testing.T) {
	hub := NewHub(&fakeLister{})

	ch, cancel := hub.Subscribe("u1")
	defer cancel()

	hub.Broadcast("u1", []core.Expense{{ID: "old"}})
	hub.Broadcast("u1", []core.Expense{{ID: "new"}})

	got := <-ch
	if len(got) != 1 || got[0].ID != "new" {
		t.Errorf("slow subscriber got %+v, want only the newest snapshot", got)
	}
}

func TestHubPropagatesListerErrors(t *testing.T) {
	hub := NewHub(&fakeLister{}) // nil records → error

	_, cancel := hub.Subscribe("u1")
	defer cancel()

	if err := hub.HandleChange(context.Background(), bus.NewChangeMessage("e1", "u1", bus.OpCreated)); err == nil {
		t.Error("HandleChange() = nil, want error from lister")
	}
}
