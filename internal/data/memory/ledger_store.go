// Package memory provides an in-process implementation of the ledger store,
// used in tests and embedded deployments where no database is available.
package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/digimonpay/wallet-ledger/internal/domain/account"
	"github.com/digimonpay/wallet-ledger/internal/domain/record"
	"github.com/digimonpay/wallet-ledger/internal/ledgerstore"
)

// LedgerStore keeps accounts and records in process memory. Each account has
// its own semaphore channel; goroutines blocked on it are woken in FIFO
// order, which bounds starvation under contention.
type LedgerStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*account.Account
	records  []*record.TransactionRecord
	locks    map[uuid.UUID]chan struct{}
}

var _ ledgerstore.Store = (*LedgerStore)(nil)

// NewLedgerStore creates an empty in-memory ledger store
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		accounts: make(map[uuid.UUID]*account.Account),
		locks:    make(map[uuid.UUID]chan struct{}),
	}
}

// CreateAccount registers an account with the store
func (s *LedgerStore) CreateAccount(_ context.Context, acc *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *acc
	s.accounts[acc.ID] = &cp
	return nil
}

// Snapshot returns the account without taking its lock
func (s *LedgerStore) Snapshot(_ context.Context, id uuid.UUID) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound{AccountID: id}
	}
	cp := *acc
	return &cp, nil
}

// Records returns a copy of all committed records, in commit order
func (s *LedgerStore) Records() []*record.TransactionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*record.TransactionRecord, len(s.records))
	for i, r := range s.records {
		cp := *r
		out[i] = &cp
	}
	return out
}

// WithAccount runs fn with exclusive access to one account
func (s *LedgerStore) WithAccount(ctx context.Context, id uuid.UUID, fn ledgerstore.UpdateFunc) error {
	if err := s.acquire(ctx, id); err != nil {
		return err
	}
	defer s.release(id)

	working, err := s.working(id)
	if err != nil {
		return err
	}

	app := &appender{}
	if err := fn(working, app); err != nil {
		return err
	}

	s.commit([]*account.Account{working}, app.records)
	return nil
}

// WithAccountPair runs fn with exclusive access to both accounts. Locks are
// taken in ascending account-id order regardless of argument order.
func (s *LedgerStore) WithAccountPair(ctx context.Context, firstID, secondID uuid.UUID, fn ledgerstore.PairUpdateFunc) error {
	if firstID == secondID {
		return ledgerstore.ErrSameAccount
	}

	low, high := firstID, secondID
	if bytes.Compare(high[:], low[:]) < 0 {
		low, high = high, low
	}

	if err := s.acquire(ctx, low); err != nil {
		return err
	}
	defer s.release(low)

	if err := s.acquire(ctx, high); err != nil {
		return err
	}
	defer s.release(high)

	first, err := s.working(firstID)
	if err != nil {
		return err
	}
	second, err := s.working(secondID)
	if err != nil {
		return err
	}

	app := &appender{}
	if err := fn(first, second, app); err != nil {
		return err
	}

	s.commit([]*account.Account{first, second}, app.records)
	return nil
}

// acquire blocks until the account's semaphore is taken or ctx expires
func (s *LedgerStore) acquire(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	sem, ok := s.locks[id]
	if !ok {
		sem = make(chan struct{}, 1)
		s.locks[id] = sem
	}
	s.mu.Unlock()

	select {
	case sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ledgerstore.ErrLockTimeout{AccountID: id}
	}
}

func (s *LedgerStore) release(id uuid.UUID) {
	s.mu.Lock()
	sem := s.locks[id]
	s.mu.Unlock()
	<-sem
}

// working returns a private copy of the account for fn to mutate. The copy
// only becomes visible at commit, so a failed fn leaves no trace.
func (s *LedgerStore) working(id uuid.UUID) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound{AccountID: id}
	}
	cp := *acc
	return &cp, nil
}

func (s *LedgerStore) commit(accounts []*account.Account, records []*record.TransactionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, acc := range accounts {
		cp := *acc
		s.accounts[acc.ID] = &cp
	}
	for _, rec := range records {
		cp := *rec
		s.records = append(s.records, &cp)
	}
}

type appender struct {
	records []*record.TransactionRecord
}

func (a *appender) Append(rec *record.TransactionRecord) {
	a.records = append(a.records, rec)
}
