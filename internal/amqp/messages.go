package amqp

import (
	"encoding/json"
	"time"
)

// StatementLine is one raw line lifted from a bank statement. Text is
// the original description the classifier works on; Amount and Date are
// extracted upstream and may be blank or malformed.
type StatementLine struct {
	Text   string `json:"text"`
	Amount string `json:"amount"`
	Date   string `json:"date"`
	Type   string `json:"type"`
}

// StatementIngestMessage carries a batch of raw statement lines to the
// worker for classification and storage.
type StatementIngestMessage struct {
	Lines     []StatementLine `json:"lines"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewStatementIngestMessage(lines []StatementLine) *StatementIngestMessage {
	return &StatementIngestMessage{
		Lines:     lines,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *StatementIngestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func StatementIngestMessageFromJSON(data []byte) (*StatementIngestMessage, error) {
	var msg StatementIngestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// TransactionSyncMessage asks the worker to export one stored
// transaction to the configured spreadsheet. Only the ID travels; the
// worker fetches the full row from the database.
type TransactionSyncMessage struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionSyncMessage(id string) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
