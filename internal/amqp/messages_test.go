package amqp

import (
	"encoding/json"
	"testing"
	"time"

	"twonest/internal/core"
)

func TestTransactionSyncMessageJSON(t *testing.T) {
	timestamp := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := &TransactionSyncMessage{ID: "tx-42", Timestamp: timestamp}

	raw, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := TransactionSyncMessageFromJSON(raw)
	if err != nil {
		t.Fatalf("TransactionSyncMessageFromJSON() error = %v", err)
	}
	if parsed.ID != msg.ID {
		t.Errorf("Parsed ID = %v, want %v", parsed.ID, msg.ID)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestTransactionSyncMessageInvalidJSON(t *testing.T) {
	if _, err := TransactionSyncMessageFromJSON([]byte(`{"id": 42`)); err == nil {
		t.Error("TransactionSyncMessageFromJSON() should fail with invalid JSON")
	}
}

func TestNewTransactionSyncMessage(t *testing.T) {
	msg := NewTransactionSyncMessage("tx-1")
	if msg.ID != "tx-1" {
		t.Errorf("ID = %v", msg.ID)
	}
	if msg.Timestamp.IsZero() || time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestNotificationMessage(t *testing.T) {
	n := core.Notification{Severity: core.SeverityWarning, Title: "Budget warning", Detail: "85%"}
	msg := NewNotificationMessage(n, "2025-03")

	raw, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["severity"] != "warning" || decoded["month"] != "2025-03" {
		t.Fatalf("decoded = %v", decoded)
	}
}
