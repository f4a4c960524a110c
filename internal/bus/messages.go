package bus

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// ChangeMessage announces that one expense changed. It carries only
// identifiers; consumers fetch whatever state they need from storage, so a
// stale message can never overwrite fresher data.
type ChangeMessage struct {
	ExpenseID string    `json:"expense_id"`
	OwnerID   string    `json:"owner_id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChangeMessage(expenseID, ownerID, op string) *ChangeMessage {
	return &ChangeMessage{
		ExpenseID: expenseID,
		OwnerID:   ownerID,
		Op:        op,
		Timestamp: time.Now().UTC(),
	}
}

// Validate rejects messages a consumer cannot act on.
func (m *ChangeMessage) Validate() error {
	if m.OwnerID == "" {
		return fmt.Errorf("change message missing owner id")
	}
	switch m.Op {
	case OpCreated, OpUpdated, OpDeleted:
		return nil
	default:
		return fmt.Errorf("unknown change op %q", m.Op)
	}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
