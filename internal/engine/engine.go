// Package engine implements the money-movement core: purchases, currency
// exchanges, deposits, and withdrawals executed as single atomic operations
// against the ledger store. Every operation either fully commits (balances
// moved, record appended) or fails with one of the structured error kinds
// and no state change.
package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/digimonpay/wallet-ledger/internal/domain/record"
)

// Engine executes synchronous, atomic balance movements. All failures are
// structured: account.ErrAccountNotFound, account.ErrInsufficientFunds,
// account.ErrInvalidAmount, account.ErrAccountArchived,
// rates.ErrUnknownCurrency, rates.ErrInvalidConversion,
// ledgerstore.ErrLockTimeout, or ledgerstore.ErrStoreUnavailable. Only
// ErrStoreUnavailable is worth retrying; a failed call made no state change.
type Engine interface {
	Purchase(ctx context.Context, input PurchaseInput) (*record.TransactionRecord, error)
	Exchange(ctx context.Context, input ExchangeInput) (*record.TransactionRecord, error)
	Deposit(ctx context.Context, input AdjustmentInput) (*record.TransactionRecord, error)
	Withdraw(ctx context.Context, input AdjustmentInput) (*record.TransactionRecord, error)

	// GetBalance is a snapshot read; it takes no account lock and may be
	// slightly stale under concurrent writes.
	GetBalance(ctx context.Context, accountID uuid.UUID) (Balance, error)
}

// PurchaseInput describes a purchase of quantity units at UnitPrice each.
// The buyer is debited and the seller credited in their own currencies,
// converting through the rate table when they differ from the price
// currency.
type PurchaseInput struct {
	BuyerAccountID  uuid.UUID
	SellerAccountID uuid.UUID
	UnitPrice       int64 // Minor units of Currency
	Quantity        int64
	Currency        string

	IdempotencyKey string // Opaque dedup hook, carried through to the record
	CorrelationID  string
}

// ExchangeInput describes a conversion of Amount (minor units of
// FromCurrency) into ToCurrency, debited from the account.
type ExchangeInput struct {
	AccountID    uuid.UUID
	FromCurrency string
	ToCurrency   string
	Amount       int64

	IdempotencyKey string
	CorrelationID  string
}

// AdjustmentInput describes a deposit or withdrawal in the account currency
type AdjustmentInput struct {
	AccountID uuid.UUID
	Amount    int64 // Minor units of the account currency

	IdempotencyKey string
	CorrelationID  string
}

// Balance is a point-in-time view of an account's funds
type Balance struct {
	AccountID uuid.UUID `json:"account_id"`
	Currency  string    `json:"currency"`
	Balance   int64     `json:"balance"`
}
