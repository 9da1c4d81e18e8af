package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/digimonpay/wallet-ledger/internal/domain/record"
	"github.com/digimonpay/wallet-ledger/internal/domain/shared"
)

// Message stores a committed or failed transaction record for reliable
// publishing to the record event stream. Messages are written in the same
// database transaction as the balance change they describe.
type Message struct {
	ID            int64               `json:"id"`
	RecordID      uuid.UUID           `json:"record_id"`
	AccountID     uuid.UUID           `json:"account_id"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

// NewMessage wraps a transaction record as a pending outbox message
func NewMessage(rec *record.TransactionRecord) (*Message, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}

	return &Message{
		RecordID:  rec.ID,
		AccountID: rec.AccountID,
		Payload:   payload,
		Status:    shared.OutboxStatusPending,
		Attempts:  0,
		CreatedAt: time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// Record extracts the transaction record from the payload
func (m *Message) Record() (*record.TransactionRecord, error) {
	var rec record.TransactionRecord
	if err := json.Unmarshal(m.Payload, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
