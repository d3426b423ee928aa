package amqp

import (
	"encoding/json"
	"time"
)

// ExportMessage is a lightweight pointer to a record that should be appended
// to the spreadsheet. It carries only kind, ID and version; the worker loads
// the full record from the database so it always exports the latest state.
type ExportMessage struct {
	Kind      string    `json:"kind"` // "expense" or "income"
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	KindExpense = "expense"
	KindIncome  = "income"
)

func NewExportMessage(kind string, id, version int64) *ExportMessage {
	return &ExportMessage{
		Kind:      kind,
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExportMessageFromJSON creates a message from JSON bytes
func ExportMessageFromJSON(data []byte) (*ExportMessage, error) {
	var msg ExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
