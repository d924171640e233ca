package amqp

import (
	"encoding/json"
	"time"

	"twonest/internal/core"
)

// TransactionSyncMessage asks the worker to mirror one transaction to
// the configured sheet. It carries only the ID; the worker fetches the
// full record from the state store.
type TransactionSyncMessage struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionSyncMessage creates a sync message for the given transaction id.
func NewTransactionSyncMessage(id string) *TransactionSyncMessage {
	return &TransactionSyncMessage{ID: id, Timestamp: time.Now()}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionSyncMessageFromJSON creates a message from JSON bytes
func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// NotificationMessage carries a fired budget alert for external
// consumers.
type NotificationMessage struct {
	Severity  string    `json:"severity"`
	Title     string    `json:"title"`
	Detail    string    `json:"detail,omitempty"`
	Month     string    `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

// NewNotificationMessage wraps a core notification for publishing.
func NewNotificationMessage(n core.Notification, month string) *NotificationMessage {
	return &NotificationMessage{
		Severity:  string(n.Severity),
		Title:     n.Title,
		Detail:    n.Detail,
		Month:     month,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
