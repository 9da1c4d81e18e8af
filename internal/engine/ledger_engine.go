package engine

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/digimonpay/wallet-ledger/internal/domain/account"
	"github.com/digimonpay/wallet-ledger/internal/domain/record"
	"github.com/digimonpay/wallet-ledger/internal/domain/shared"
	"github.com/digimonpay/wallet-ledger/internal/ledgerstore"
	"github.com/digimonpay/wallet-ledger/internal/rates"
)

// LedgerEngine implements Engine on top of a ledger store and a rate table.
// Both collaborators are injected; the engine owns no global state and no
// background goroutines.
type LedgerEngine struct {
	store    ledgerstore.Store
	rates    *rates.Table
	failures FailureRecorder // May be nil; failures are then not audited
	logger   *slog.Logger
}

// NewLedgerEngine creates an engine bound to the given store and rate table
func NewLedgerEngine(store ledgerstore.Store, table *rates.Table, failures FailureRecorder, logger *slog.Logger) *LedgerEngine {
	return &LedgerEngine{
		store:    store,
		rates:    table,
		failures: failures,
		logger:   logger,
	}
}

var _ Engine = (*LedgerEngine)(nil)

// Purchase debits the buyer and credits the seller by quantity times unit
// price, all inside one exclusive scope spanning both accounts. The balance
// check happens under the lock, never before it.
func (e *LedgerEngine) Purchase(ctx context.Context, input PurchaseInput) (*record.TransactionRecord, error) {
	logger := e.opLogger(input.CorrelationID)

	amount, err := totalAmount(input.UnitPrice, input.Quantity)
	if err != nil {
		return nil, e.fail(ctx, logger, failedRecord(input.BuyerAccountID, shared.RecordKindPurchase, input.UnitPrice, input.Currency, input), err)
	}

	var rec *record.TransactionRecord
	err = e.store.WithAccountPair(ctx, input.BuyerAccountID, input.SellerAccountID, func(buyer, seller *account.Account, app ledgerstore.Appender) error {
		debit, err := e.amountIn(amount, input.Currency, buyer.Currency)
		if err != nil {
			return err
		}
		credit, err := e.amountIn(amount, input.Currency, seller.Currency)
		if err != nil {
			return err
		}
		baseAmount, err := e.rates.BaseEquivalent(amount, input.Currency)
		if err != nil {
			return err
		}

		if err := buyer.Withdraw(debit); err != nil {
			return err
		}
		if err := seller.Deposit(credit); err != nil {
			return err
		}

		sellerID := seller.ID
		rec = &record.TransactionRecord{
			ID:                    uuid.New(),
			AccountID:             buyer.ID,
			CounterpartyAccountID: &sellerID,
			Kind:                  shared.RecordKindPurchase,
			Amount:                amount,
			Currency:              input.Currency,
			BaseAmount:            baseAmount,
			Status:                shared.RecordStatusCommitted,
			IdempotencyKey:        input.IdempotencyKey,
			CorrelationID:         input.CorrelationID,
			CreatedAt:             time.Now().UTC(),
		}
		app.Append(rec)
		return nil
	})
	if err != nil {
		return nil, e.fail(ctx, logger, failedRecord(input.BuyerAccountID, shared.RecordKindPurchase, amount, input.Currency, input), err)
	}

	logger.Info("purchase committed",
		"record_id", rec.ID.String(),
		"buyer_account_id", input.BuyerAccountID.String(),
		"seller_account_id", input.SellerAccountID.String(),
		"amount", amount,
		"currency", input.Currency,
	)
	return rec, nil
}

// Exchange converts Amount from one currency to another and debits the
// account by the account-currency equivalent of the source amount. The
// whole check-then-act sequence runs under the account's exclusive lock.
func (e *LedgerEngine) Exchange(ctx context.Context, input ExchangeInput) (*record.TransactionRecord, error) {
	logger := e.opLogger(input.CorrelationID)
	audit := failedRecord(input.AccountID, shared.RecordKindExchange, input.Amount, input.FromCurrency, input)

	if input.Amount <= 0 {
		return nil, e.fail(ctx, logger, audit, account.ErrInvalidAmount)
	}

	conv, err := e.rates.Convert(input.Amount, input.FromCurrency, input.ToCurrency)
	if err != nil {
		return nil, e.fail(ctx, logger, audit, err)
	}

	var rec *record.TransactionRecord
	err = e.store.WithAccount(ctx, input.AccountID, func(acc *account.Account, app ledgerstore.Appender) error {
		debit, err := e.amountIn(input.Amount, input.FromCurrency, acc.Currency)
		if err != nil {
			return err
		}
		if err := acc.Withdraw(debit); err != nil {
			return err
		}

		rec = &record.TransactionRecord{
			ID:              uuid.New(),
			AccountID:       acc.ID,
			Kind:            shared.RecordKindExchange,
			Amount:          input.Amount,
			Currency:        input.FromCurrency,
			BaseAmount:      conv.BaseAmount,
			ConvertedAmount: conv.Amount,
			ToCurrency:      input.ToCurrency,
			Status:          shared.RecordStatusCommitted,
			IdempotencyKey:  input.IdempotencyKey,
			CorrelationID:   input.CorrelationID,
			CreatedAt:       time.Now().UTC(),
		}
		app.Append(rec)
		return nil
	})
	if err != nil {
		return nil, e.fail(ctx, logger, audit, err)
	}

	logger.Info("exchange committed",
		"record_id", rec.ID.String(),
		"account_id", input.AccountID.String(),
		"amount", input.Amount,
		"from", input.FromCurrency,
		"to", input.ToCurrency,
		"converted_amount", rec.ConvertedAmount,
	)
	return rec, nil
}

// Deposit credits the account by the given amount of its own currency
func (e *LedgerEngine) Deposit(ctx context.Context, input AdjustmentInput) (*record.TransactionRecord, error) {
	return e.adjust(ctx, input, shared.RecordKindDeposit)
}

// Withdraw debits the account, failing with ErrInsufficientFunds if the
// balance cannot cover the amount
func (e *LedgerEngine) Withdraw(ctx context.Context, input AdjustmentInput) (*record.TransactionRecord, error) {
	return e.adjust(ctx, input, shared.RecordKindWithdrawal)
}

func (e *LedgerEngine) adjust(ctx context.Context, input AdjustmentInput, kind shared.RecordKind) (*record.TransactionRecord, error) {
	logger := e.opLogger(input.CorrelationID)
	audit := failedRecord(input.AccountID, kind, input.Amount, "", input)

	if input.Amount <= 0 {
		return nil, e.fail(ctx, logger, audit, account.ErrInvalidAmount)
	}

	var rec *record.TransactionRecord
	err := e.store.WithAccount(ctx, input.AccountID, func(acc *account.Account, app ledgerstore.Appender) error {
		var moveErr error
		if kind == shared.RecordKindDeposit {
			moveErr = acc.Deposit(input.Amount)
		} else {
			moveErr = acc.Withdraw(input.Amount)
		}
		if moveErr != nil {
			return moveErr
		}

		baseAmount, err := e.rates.BaseEquivalent(input.Amount, acc.Currency)
		if err != nil {
			return err
		}

		rec = &record.TransactionRecord{
			ID:             uuid.New(),
			AccountID:      acc.ID,
			Kind:           kind,
			Amount:         input.Amount,
			Currency:       acc.Currency,
			BaseAmount:     baseAmount,
			Status:         shared.RecordStatusCommitted,
			IdempotencyKey: input.IdempotencyKey,
			CorrelationID:  input.CorrelationID,
			CreatedAt:      time.Now().UTC(),
		}
		app.Append(rec)
		return nil
	})
	if err != nil {
		return nil, e.fail(ctx, logger, audit, err)
	}

	logger.Info("adjustment committed",
		"record_id", rec.ID.String(),
		"account_id", input.AccountID.String(),
		"kind", string(kind),
		"amount", input.Amount,
	)
	return rec, nil
}

// GetBalance returns the account's currency and balance without locking
func (e *LedgerEngine) GetBalance(ctx context.Context, accountID uuid.UUID) (Balance, error) {
	acc, err := e.store.Snapshot(ctx, accountID)
	if err != nil {
		return Balance{}, err
	}
	return Balance{
		AccountID: acc.ID,
		Currency:  acc.Currency,
		Balance:   acc.Balance,
	}, nil
}

// amountIn expresses amount (minor units of from) in minor units of to,
// through the single canonical conversion path
func (e *LedgerEngine) amountIn(amount int64, from, to string) (int64, error) {
	if from == to {
		return amount, nil
	}
	conv, err := e.rates.Convert(amount, from, to)
	if err != nil {
		return 0, err
	}
	return conv.Amount, nil
}

// fail audits business-rule failures and passes the structured error
// through unchanged so the caller can map it deterministically
func (e *LedgerEngine) fail(ctx context.Context, logger *slog.Logger, audit *record.TransactionRecord, err error) error {
	reason, auditable := classify(err)
	if !auditable {
		logger.Error("operation failed",
			"account_id", audit.AccountID.String(),
			"kind", string(audit.Kind),
			"error", err,
		)
		return err
	}

	logger.Warn("operation rejected",
		"account_id", audit.AccountID.String(),
		"kind", string(audit.Kind),
		"reason", string(reason),
	)

	if e.failures != nil {
		audit.FailureReason = reason
		if auditErr := e.failures.RecordFailure(ctx, audit); auditErr != nil {
			logger.Error("failed to audit rejected operation", "record_id", audit.ID.String(), "error", auditErr)
		}
	}
	return err
}

// classify maps an error to a failure reason; the second result is false
// for infrastructure errors that should not produce FAILED audit records
// (a retried call may yet succeed).
func classify(err error) (shared.FailureReason, bool) {
	switch {
	case errors.Is(err, account.ErrInsufficientFunds):
		return shared.FailureReasonInsufficientFunds, true
	case errors.Is(err, account.ErrInvalidAmount), errors.Is(err, account.ErrAccountArchived), errors.Is(err, ledgerstore.ErrSameAccount):
		return shared.FailureReasonInvalidAmount, true
	case errors.Is(err, account.ErrAccountNotFound{}):
		return shared.FailureReasonAccountNotFound, true
	case errors.Is(err, rates.ErrUnknownCurrency{}):
		return shared.FailureReasonUnknownCurrency, true
	case errors.Is(err, rates.ErrInvalidConversion):
		return shared.FailureReasonInvalidConversion, true
	case errors.Is(err, ledgerstore.ErrLockTimeout{}):
		return shared.FailureReasonLockTimeout, false
	default:
		return shared.FailureReasonStoreUnavailable, false
	}
}

// totalAmount multiplies price by quantity in int64 minor units, rejecting
// non-positive inputs and overflow
func totalAmount(unitPrice, quantity int64) (int64, error) {
	if unitPrice <= 0 || quantity <= 0 {
		return 0, account.ErrInvalidAmount
	}
	if unitPrice > math.MaxInt64/quantity {
		return 0, account.ErrInvalidAmount
	}
	return unitPrice * quantity, nil
}

func (e *LedgerEngine) opLogger(correlationID string) *slog.Logger {
	if correlationID != "" {
		return e.logger.With("correlation_id", correlationID)
	}
	return e.logger
}

// failedRecord builds the audit skeleton for a rejected operation
func failedRecord(accountID uuid.UUID, kind shared.RecordKind, amount int64, currency string, input interface{}) *record.TransactionRecord {
	rec := &record.TransactionRecord{
		ID:        uuid.New(),
		AccountID: accountID,
		Kind:      kind,
		Amount:    amount,
		Currency:  currency,
		Status:    shared.RecordStatusFailed,
		CreatedAt: time.Now().UTC(),
	}
	switch in := input.(type) {
	case PurchaseInput:
		rec.IdempotencyKey = in.IdempotencyKey
		rec.CorrelationID = in.CorrelationID
	case ExchangeInput:
		rec.IdempotencyKey = in.IdempotencyKey
		rec.CorrelationID = in.CorrelationID
		rec.ToCurrency = in.ToCurrency
	case AdjustmentInput:
		rec.IdempotencyKey = in.IdempotencyKey
		rec.CorrelationID = in.CorrelationID
	}
	return rec
}
