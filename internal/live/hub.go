// Package live turns change events into full-snapshot deliveries for
// connected clients. Every remote change triggers a complete re-read of the
// owner's records; subscribers always see a fresh, immutable snapshot and
// never an incremental patch.
package live

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"belanja/internal/bus"
	"belanja/internal/core"
)

// SnapshotLister loads the full record set of one owner.
type SnapshotLister interface {
	ListExpenses(ctx context.Context, ownerID string) ([]core.Expense, error)
}

type subscriber struct {
	ownerID string
	ch      chan []core.Expense
}

// Hub fans owner-scoped snapshots out to subscribers. Subscriptions are
// scoped acquisitions: the returned cancel func must run on every exit path
// of the consumer, or snapshots would keep flowing to a dead client.
type Hub struct {
	lister SnapshotLister

	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]*subscriber
}

func NewHub(lister SnapshotLister) *Hub {
	return &Hub{
		lister: lister,
		subs:   make(map[string]map[int]*subscriber),
	}
}

// Subscribe registers interest in one owner's records. The channel carries
// full snapshots; cancel releases the subscription and closes the channel.
func (h *Hub) Subscribe(ownerID string) (<-chan []core.Expense, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	sub := &subscriber{
		ownerID: ownerID,
		// buffer one snapshot; Broadcast replaces rather than blocks
		ch: make(chan []core.Expense, 1),
	}
	if h.subs[ownerID] == nil {
		h.subs[ownerID] = make(map[int]*subscriber)
	}
	h.subs[ownerID][id] = sub

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if owners, ok := h.subs[ownerID]; ok {
				delete(owners, id)
				if len(owners) == 0 {
					delete(h.subs, ownerID)
				}
			}
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Broadcast delivers a snapshot to every subscriber of an owner. A slow
// subscriber's stale snapshot is replaced by the newest one; delivery never
// blocks the hub.
func (h *Hub) Broadcast(ownerID string, records []core.Expense) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs[ownerID] {
		select {
		case sub.ch <- records:
		default:
			select {
			case <-sub.ch: // drop the stale snapshot
			default:
			}
			sub.ch <- records
		}
	}
}

// SubscriberCount reports how many subscribers an owner currently has.
func (h *Hub) SubscriberCount(ownerID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[ownerID])
}

// HandleChange reloads the owner's snapshot and broadcasts it. Owners with
// no subscribers cost nothing: the reload is skipped.
func (h *Hub) HandleChange(ctx context.Context, msg *bus.ChangeMessage) error {
	if h.SubscriberCount(msg.OwnerID) == 0 {
		return nil
	}

	records, err := h.lister.ListExpenses(ctx, msg.OwnerID)
	if err != nil {
		return fmt.Errorf("load snapshot for %s: %w", msg.OwnerID, err)
	}
	h.Broadcast(msg.OwnerID, records)

	slog.DebugContext(ctx, "Snapshot broadcast",
		"owner_id", msg.OwnerID,
		"op", msg.Op,
		"records", len(records))
	return nil
}

// Run consumes change events until ctx is done.
func (h *Hub) Run(ctx context.Context, client *bus.Client) error {
	return client.ConsumeChanges(ctx, h.HandleChange)
}
