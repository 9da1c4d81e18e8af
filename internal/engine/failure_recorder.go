package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/digimonpay/wallet-ledger/internal/domain/outbox"
	"github.com/digimonpay/wallet-ledger/internal/domain/record"
)

// FailureRecorder persists FAILED records for audit. Failure records never
// touch balances; they exist so rejected operations are visible on the
// record event stream.
type FailureRecorder interface {
	RecordFailure(ctx context.Context, rec *record.TransactionRecord) error
}

// OutboxFailureRecorder writes failure records to the transactional outbox,
// from where the poller publishes them like any committed record
type OutboxFailureRecorder struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

// NewOutboxFailureRecorder creates an outbox-backed failure recorder
func NewOutboxFailureRecorder(outboxRepo outbox.Repository, logger *slog.Logger) *OutboxFailureRecorder {
	return &OutboxFailureRecorder{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// RecordFailure enqueues the FAILED record for publishing
func (r *OutboxFailureRecorder) RecordFailure(ctx context.Context, rec *record.TransactionRecord) error {
	msg, err := outbox.NewMessage(rec)
	if err != nil {
		return fmt.Errorf("failed to wrap failure record %s: %w", rec.ID.String(), err)
	}

	if err := r.outboxRepo.Create(ctx, msg); err != nil {
		return fmt.Errorf("failed to enqueue failure record %s: %w", rec.ID.String(), err)
	}

	r.logger.Debug("failure record enqueued",
		"record_id", rec.ID.String(),
		"account_id", rec.AccountID.String(),
		"reason", string(rec.FailureReason),
	)
	return nil
}
