package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"keuangan/internal/core"
)

// LedgerAppendedMessage announces rows that were appended to the primary
// store, in append order. The mirror worker replays them elsewhere.
type LedgerAppendedMessage struct {
	EventID   string      `json:"event_id"`
	Rows      []LedgerRow `json:"rows"`
	Timestamp time.Time   `json:"timestamp"`
}

// LedgerRow is the wire form of one transaction.
type LedgerRow struct {
	Date        string `json:"date"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Source      string `json:"source_account"`
	Destination string `json:"destination_account"`
	Amount      int64  `json:"amount"`
	Note        string `json:"note,omitempty"`
}

// NewLedgerAppendedMessage creates a message with a fresh event ID.
func NewLedgerAppendedMessage(txs []core.Transaction) *LedgerAppendedMessage {
	rows := make([]LedgerRow, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, LedgerRow{
			Date:        t.Date.String(),
			Type:        string(t.Type),
			Category:    t.Category,
			Source:      t.Source,
			Destination: t.Destination,
			Amount:      t.Amount.Minor,
			Note:        t.Note,
		})
	}
	return &LedgerAppendedMessage{
		EventID:   uuid.NewString(),
		Rows:      rows,
		Timestamp: time.Now(),
	}
}

// Transactions decodes and validates every row. One bad row rejects the
// whole message so that the mirror never holds half a submission.
func (m *LedgerAppendedMessage) Transactions() ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(m.Rows))
	for i, r := range m.Rows {
		date, err := core.ParseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		typ, err := core.ParseTxType(r.Type)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		t := core.Transaction{
			Date:        date,
			Type:        typ,
			Category:    r.Category,
			Source:      r.Source,
			Destination: r.Destination,
			Amount:      core.Money{Minor: r.Amount},
			Note:        r.Note,
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// ToJSON converts the message to JSON bytes
func (m *LedgerAppendedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerAppendedMessageFromJSON parses a message, rejecting ones without an
// event ID or rows.
func LedgerAppendedMessageFromJSON(data []byte) (*LedgerAppendedMessage, error) {
	var msg LedgerAppendedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.EventID == "" {
		return nil, fmt.Errorf("message without event_id")
	}
	if len(msg.Rows) == 0 {
		return nil, fmt.Errorf("message %s carries no rows", msg.EventID)
	}
	return &msg, nil
}
