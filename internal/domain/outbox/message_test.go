package outbox

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digimonpay/wallet-ledger/internal/domain/record"
	"github.com/digimonpay/wallet-ledger/internal/domain/shared"
)

func testRecord() *record.TransactionRecord {
	return &record.TransactionRecord{
		ID:         uuid.New(),
		AccountID:  uuid.New(),
		Kind:       shared.RecordKindDeposit,
		Amount:     2500,
		Currency:   "THB",
		BaseAmount: 2500,
		Status:     shared.RecordStatusCommitted,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestNewMessage(t *testing.T) {
	rec := testRecord()

	msg, err := NewMessage(rec)

	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, rec.ID, msg.RecordID)
	assert.Equal(t, rec.AccountID, msg.AccountID)
	assert.Equal(t, shared.OutboxStatusPending, msg.Status)
	assert.Equal(t, 0, msg.Attempts)
	assert.Nil(t, msg.LastAttemptAt)
	assert.NotEmpty(t, msg.Payload)
}

func TestMessage_Record(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		rec := testRecord()
		msg, err := NewMessage(rec)
		require.NoError(t, err)

		got, err := msg.Record()
		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)
		assert.Equal(t, rec.AccountID, got.AccountID)
		assert.Equal(t, rec.Kind, got.Kind)
		assert.Equal(t, rec.Amount, got.Amount)
		assert.Equal(t, rec.Status, got.Status)
	})

	t.Run("CorruptPayload", func(t *testing.T) {
		msg := &Message{Payload: []byte("{not json")}
		got, err := msg.Record()
		assert.Error(t, err)
		assert.Nil(t, got)
	})
}

func TestMessage_StatusTransitions(t *testing.T) {
	msg, err := NewMessage(testRecord())
	require.NoError(t, err)

	msg.IncrementAttempts()
	assert.Equal(t, 1, msg.Attempts)
	require.NotNil(t, msg.LastAttemptAt)
	assert.Equal(t, shared.OutboxStatusPending, msg.Status, "attempts alone do not change status")

	msg.MarkAsProcessed()
	assert.Equal(t, shared.OutboxStatusProcessed, msg.Status)

	msg.MarkAsFailed()
	assert.Equal(t, shared.OutboxStatusFailedToPublish, msg.Status)
}
