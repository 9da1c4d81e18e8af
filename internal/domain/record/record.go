package record

import (
	"time"

	"github.com/google/uuid"

	"github.com/digimonpay/wallet-ledger/internal/domain/shared"
)

// TransactionRecord is an immutable, append-only ledger entry describing one
// committed balance movement against an account. Amounts are int64 minor
// units of the named currency; BaseAmount is the movement expressed in the
// base currency at the rate in effect when the record was created.
type TransactionRecord struct {
	ID                    uuid.UUID            `json:"id" bson:"record_id"`
	AccountID             uuid.UUID            `json:"account_id" bson:"account_id"`
	CounterpartyAccountID *uuid.UUID           `json:"counterparty_account_id,omitempty" bson:"counterparty_account_id,omitempty"`
	Kind                  shared.RecordKind    `json:"kind" bson:"kind"`
	Amount                int64                `json:"amount" bson:"amount"`
	Currency              string               `json:"currency" bson:"currency"`
	BaseAmount            int64                `json:"base_amount" bson:"base_amount"`
	ConvertedAmount       int64                `json:"converted_amount,omitempty" bson:"converted_amount,omitempty"`
	ToCurrency            string               `json:"to_currency,omitempty" bson:"to_currency,omitempty"`
	Status                shared.RecordStatus  `json:"status" bson:"status"`
	FailureReason         shared.FailureReason `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	IdempotencyKey        string               `json:"idempotency_key,omitempty" bson:"idempotency_key,omitempty"`
	CorrelationID         string               `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	CreatedAt             time.Time            `json:"created_at" bson:"created_at"`
}
