package engine

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/digimonpay/wallet-ledger/internal/domain/record"
)

// PooledEngine runs engine operations on a bounded worker pool so a burst
// of inbound requests cannot hold more than Size operations against the
// store at once. Calls stay synchronous: the submitting goroutine waits for
// its result.
type PooledEngine struct {
	base   Engine
	pool   *ants.Pool
	logger *slog.Logger
}

// PoolConfig holds worker pool sizing
type PoolConfig struct {
	Size int
}

// NewPooledEngine wraps base with an ants worker pool of the given size
func NewPooledEngine(base Engine, cfg PoolConfig, logger *slog.Logger) (*PooledEngine, error) {
	pool, err := ants.NewPool(cfg.Size)
	if err != nil {
		return nil, err
	}

	return &PooledEngine{
		base:   base,
		pool:   pool,
		logger: logger,
	}, nil
}

var _ Engine = (*PooledEngine)(nil)

type pooledResult struct {
	rec *record.TransactionRecord
	err error
}

// submit runs op on the pool and waits for its result
func (p *PooledEngine) submit(op func() (*record.TransactionRecord, error)) (*record.TransactionRecord, error) {
	resultChan := make(chan pooledResult, 1)

	err := p.pool.Submit(func() {
		rec, err := op()
		resultChan <- pooledResult{rec: rec, err: err}
	})
	if err != nil {
		p.logger.Error("failed to submit operation to worker pool", "error", err)
		return nil, err
	}

	res := <-resultChan
	return res.rec, res.err
}

func (p *PooledEngine) Purchase(ctx context.Context, input PurchaseInput) (*record.TransactionRecord, error) {
	return p.submit(func() (*record.TransactionRecord, error) {
		return p.base.Purchase(ctx, input)
	})
}

func (p *PooledEngine) Exchange(ctx context.Context, input ExchangeInput) (*record.TransactionRecord, error) {
	return p.submit(func() (*record.TransactionRecord, error) {
		return p.base.Exchange(ctx, input)
	})
}

func (p *PooledEngine) Deposit(ctx context.Context, input AdjustmentInput) (*record.TransactionRecord, error) {
	return p.submit(func() (*record.TransactionRecord, error) {
		return p.base.Deposit(ctx, input)
	})
}

func (p *PooledEngine) Withdraw(ctx context.Context, input AdjustmentInput) (*record.TransactionRecord, error) {
	return p.submit(func() (*record.TransactionRecord, error) {
		return p.base.Withdraw(ctx, input)
	})
}

// GetBalance bypasses the pool; snapshot reads take no locks
func (p *PooledEngine) GetBalance(ctx context.Context, accountID uuid.UUID) (Balance, error) {
	return p.base.GetBalance(ctx, accountID)
}

// Shutdown gracefully releases the worker pool
func (p *PooledEngine) Shutdown() {
	p.logger.Info("shutting down engine worker pool", "running_workers", p.pool.Running())
	p.pool.Release()
}

// Running returns the number of busy workers
func (p *PooledEngine) Running() int {
	return p.pool.Running()
}

// Capacity returns the pool capacity
func (p *PooledEngine) Capacity() int {
	return p.pool.Cap()
}
