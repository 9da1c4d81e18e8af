package postgres

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/digimonpay/wallet-ledger/internal/domain/account"
	"github.com/digimonpay/wallet-ledger/internal/domain/outbox"
	"github.com/digimonpay/wallet-ledger/internal/domain/record"
	"github.com/digimonpay/wallet-ledger/internal/ledgerstore"
	"github.com/digimonpay/wallet-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE for lock_not_available, raised when NOWAIT or lock_timeout trips
const pgLockNotAvailable = "55P03"

// TxBeginner abstracts pool transaction creation for testability
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// LedgerStore is the authoritative ledgerstore.Store implementation. Balance
// changes, transaction records, and outbox messages commit in one database
// transaction; exclusive account access is a SELECT ... FOR UPDATE row lock
// held until commit.
type LedgerStore struct {
	pool        TxBeginner
	accounts    account.Repository
	outbox      outbox.Repository
	logger      *slog.Logger
	lockTimeout time.Duration
}

// NewLedgerStore creates a PostgreSQL-backed ledger store
func NewLedgerStore(
	logger *slog.Logger,
	db *persistence.PostgresDB,
	accounts account.Repository,
	outboxRepo outbox.Repository,
	lockTimeout time.Duration,
) *LedgerStore {
	return &LedgerStore{
		pool:        db.Pool(),
		accounts:    accounts,
		outbox:      outboxRepo,
		logger:      logger,
		lockTimeout: lockTimeout,
	}
}

var _ ledgerstore.Store = (*LedgerStore)(nil)

// recordAppender collects records appended inside an exclusive-access scope
type recordAppender struct {
	records []*record.TransactionRecord
}

func (a *recordAppender) Append(rec *record.TransactionRecord) {
	a.records = append(a.records, rec)
}

// WithAccount runs fn with a row lock on the account. The balance change and
// appended records commit atomically or not at all.
func (s *LedgerStore) WithAccount(ctx context.Context, id uuid.UUID, fn ledgerstore.UpdateFunc) error {
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	return s.withTx(lockCtx, func(tx pgx.Tx) error {
		accounts := s.accounts.WithTx(tx)

		acc, err := accounts.LockForUpdate(lockCtx, id)
		if err != nil {
			return s.mapLockErr(err, id)
		}

		app := &recordAppender{}
		versionBefore := acc.Version
		if err := fn(acc, app); err != nil {
			return err
		}

		if acc.Version != versionBefore {
			if err := accounts.Update(lockCtx, acc); err != nil {
				return s.mapInfraErr(err, id)
			}
		}

		return s.appendRecords(lockCtx, tx, app.records)
	})
}

// WithAccountPair runs fn with row locks on both accounts. Locks are taken in
// ascending account-id order regardless of argument order so concurrent pair
// operations on the same accounts cannot deadlock.
func (s *LedgerStore) WithAccountPair(ctx context.Context, firstID, secondID uuid.UUID, fn ledgerstore.PairUpdateFunc) error {
	if firstID == secondID {
		return ledgerstore.ErrSameAccount
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	lockIDs := [2]uuid.UUID{firstID, secondID}
	if bytes.Compare(secondID[:], firstID[:]) < 0 {
		lockIDs[0], lockIDs[1] = secondID, firstID
	}

	return s.withTx(lockCtx, func(tx pgx.Tx) error {
		accounts := s.accounts.WithTx(tx)

		locked := make(map[uuid.UUID]*account.Account, 2)
		for _, id := range lockIDs {
			acc, err := accounts.LockForUpdate(lockCtx, id)
			if err != nil {
				return s.mapLockErr(err, id)
			}
			locked[id] = acc
		}

		first, second := locked[firstID], locked[secondID]
		firstVersion, secondVersion := first.Version, second.Version

		app := &recordAppender{}
		if err := fn(first, second, app); err != nil {
			return err
		}

		for _, pending := range []struct {
			acc     *account.Account
			version int
		}{{first, firstVersion}, {second, secondVersion}} {
			if pending.acc.Version == pending.version {
				continue
			}
			if err := accounts.Update(lockCtx, pending.acc); err != nil {
				return s.mapInfraErr(err, pending.acc.ID)
			}
		}

		return s.appendRecords(lockCtx, tx, app.records)
	})
}

// Snapshot returns the account without taking its row lock
func (s *LedgerStore) Snapshot(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	acc, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			return nil, err
		}
		return nil, ledgerstore.ErrStoreUnavailable{Cause: err}
	}
	return acc, nil
}

// withTx runs fn in a transaction, rolling back on error or panic. Begin and
// commit failures surface as ErrStoreUnavailable since no state changed.
func (s *LedgerStore) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ledgerstore.ErrLockTimeout{}
		}
		return ledgerstore.ErrStoreUnavailable{Cause: err}
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Error("Failed to roll back ledger transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error("Failed to commit ledger transaction", "error", err)
		return ledgerstore.ErrStoreUnavailable{Cause: err}
	}

	return nil
}

// appendRecords inserts the collected records and their outbox messages into
// the open transaction
func (s *LedgerStore) appendRecords(ctx context.Context, tx pgx.Tx, records []*record.TransactionRecord) error {
	if len(records) == 0 {
		return nil
	}

	outboxRepo := s.outbox.WithTx(tx)

	query := `
		INSERT INTO transaction_records (id, account_id, counterparty_account_id, kind, amount, currency,
			base_amount, converted_amount, to_currency, status, failure_reason,
			idempotency_key, correlation_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	for _, rec := range records {
		_, err := tx.Exec(ctx, query,
			rec.ID,
			rec.AccountID,
			rec.CounterpartyAccountID,
			rec.Kind,
			rec.Amount,
			rec.Currency,
			rec.BaseAmount,
			rec.ConvertedAmount,
			rec.ToCurrency,
			rec.Status,
			rec.FailureReason,
			rec.IdempotencyKey,
			rec.CorrelationID,
			rec.CreatedAt,
		)
		if err != nil {
			s.logger.Error("Failed to insert transaction record", "record_id", rec.ID.String(), "error", err)
			return s.mapInfraErr(fmt.Errorf("failed to insert transaction record: %w", err), rec.AccountID)
		}

		msg, err := outbox.NewMessage(rec)
		if err != nil {
			return fmt.Errorf("failed to build outbox message: %w", err)
		}
		if err := outboxRepo.Create(ctx, msg); err != nil {
			return s.mapInfraErr(err, rec.AccountID)
		}
	}

	return nil
}

// mapLockErr translates row lock acquisition failures into store errors
func (s *LedgerStore) mapLockErr(err error, id uuid.UUID) error {
	if errors.Is(err, account.ErrAccountNotFound{}) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ledgerstore.ErrLockTimeout{AccountID: id}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
		return ledgerstore.ErrLockTimeout{AccountID: id}
	}
	return ledgerstore.ErrStoreUnavailable{Cause: err}
}

// mapInfraErr translates persistence failures inside an open transaction. The
// lock-timeout context spans the whole transaction, so a deadline tripping on
// a write means the lock budget expired mid-flight.
func (s *LedgerStore) mapInfraErr(err error, id uuid.UUID) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ledgerstore.ErrLockTimeout{AccountID: id}
	}
	return ledgerstore.ErrStoreUnavailable{Cause: err}
}
