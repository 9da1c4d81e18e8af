// Package ledgerstore defines the transactional store contract the engine
// runs against: exclusive per-account access with atomic commit of balance
// changes and appended transaction records.
package ledgerstore

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/digimonpay/wallet-ledger/internal/domain/account"
	"github.com/digimonpay/wallet-ledger/internal/domain/record"
)

// ErrSameAccount indicates a pair operation was given one account twice
var ErrSameAccount = errors.New("pair operation requires two distinct accounts")

// Appender collects transaction records inside an exclusive-access scope.
// Appended records commit atomically with the balance changes made in the
// same scope, or not at all.
type Appender interface {
	Append(rec *record.TransactionRecord)
}

// UpdateFunc runs with exclusive access to one account. It may mutate the
// account balance and append records; returning an error discards both.
type UpdateFunc func(acc *account.Account, app Appender) error

// PairUpdateFunc runs with exclusive access to two accounts. The accounts
// are handed back in argument order regardless of lock acquisition order.
type PairUpdateFunc func(first, second *account.Account, app Appender) error

// Store is the transactional ledger store. Implementations must acquire
// account locks for pair operations in ascending account-id order, never in
// argument order, so concurrent cross-account operations cannot deadlock.
type Store interface {
	// WithAccount runs fn with exclusive access to the account. The balance
	// change and any appended records persist as one atomic unit.
	// Fails with ErrAccountNotFound, ErrLockTimeout, or ErrStoreUnavailable.
	WithAccount(ctx context.Context, id uuid.UUID, fn UpdateFunc) error

	// WithAccountPair runs fn with exclusive access to both accounts
	WithAccountPair(ctx context.Context, firstID, secondID uuid.UUID, fn PairUpdateFunc) error

	// Snapshot returns the account without taking its lock. The result may
	// be slightly stale under concurrent writes.
	Snapshot(ctx context.Context, id uuid.UUID) (*account.Account, error)
}

// ErrLockTimeout indicates the caller's context expired while waiting for
// exclusive access. Any partially acquired locks have been released and no
// state was changed.
type ErrLockTimeout struct {
	AccountID uuid.UUID
}

func (e ErrLockTimeout) Error() string {
	return "timed out waiting for exclusive access to account: " + e.AccountID.String()
}

// Is matches any ErrLockTimeout when the target carries a nil UUID
func (e ErrLockTimeout) Is(target error) bool {
	t, ok := target.(ErrLockTimeout)
	if !ok {
		return false
	}
	if t.AccountID == uuid.Nil {
		return true
	}
	return e.AccountID == t.AccountID
}

// ErrStoreUnavailable indicates the underlying persistence layer failed.
// The operation made no state change and may be retried by the caller.
type ErrStoreUnavailable struct {
	Cause error
}

func (e ErrStoreUnavailable) Error() string {
	if e.Cause == nil {
		return "ledger store unavailable"
	}
	return "ledger store unavailable: " + e.Cause.Error()
}

func (e ErrStoreUnavailable) Unwrap() error {
	return e.Cause
}

// Is matches any ErrStoreUnavailable regardless of cause
func (e ErrStoreUnavailable) Is(target error) bool {
	_, ok := target.(ErrStoreUnavailable)
	return ok
}
