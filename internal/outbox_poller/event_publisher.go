// Package outbox_poller drains the transactional outbox and publishes record
// events to the event stream. Together with the outbox write in the ledger
// commit it gives at-least-once delivery; consumers deduplicate by record ID.
package outbox_poller

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/digimonpay/wallet-ledger/internal/domain/outbox"
	"github.com/digimonpay/wallet-ledger/internal/domain/record"
	"github.com/digimonpay/wallet-ledger/internal/domain/shared"
	"github.com/digimonpay/wallet-ledger/internal/platform/messaging/producers"
)

// EventPublisher pushes outbox messages onto the record event stream
type EventPublisher interface {
	PublishEvent(ctx context.Context, message *outbox.Message) error
}

// EventPublisherImpl implements EventPublisher on top of a Kafka producer
type EventPublisherImpl struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewEventPublisher creates a new publisher
func NewEventPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) EventPublisher {
	return &EventPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishEvent publishes one outbox message and marks it processed. Events
// are keyed by account ID so the stream preserves per-account record order.
func (p *EventPublisherImpl) PublishEvent(ctx context.Context, message *outbox.Message) error {
	var rec record.TransactionRecord
	if err := json.Unmarshal(message.Payload, &rec); err != nil {
		p.logger.Error("Failed to unmarshal record from outbox payload",
			"outbox_id", message.ID, "record_id", message.RecordID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger
	if rec.CorrelationID != "" {
		logger = p.logger.With("correlation_id", rec.CorrelationID)
	}

	logger.Debug("Publishing outbox message to record stream", "outbox_id", message.ID, "record_id", message.RecordID)

	if err := p.producer.Publish(ctx, message.AccountID.String(), &rec); err != nil {
		return fmt.Errorf("failed to publish record %s to stream: %w", message.RecordID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "record_id", message.RecordID, "error", err,
		)
		return fmt.Errorf("publish for %s OK, but failed to mark outbox %d as PROCESSED: %w", message.RecordID, message.ID, err)
	}

	logger.Info("Outbox message published and marked as PROCESSED", "outbox_id", message.ID, "record_id", message.RecordID)
	return nil
}
