// Package archiver consumes record events from the event stream and writes
// them into the MongoDB archive, the read model served by the history API.
package archiver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/digimonpay/wallet-ledger/internal/domain/record"
	"github.com/digimonpay/wallet-ledger/internal/platform/messaging/producers"
)

// RecordEventHandler handles incoming record events from Kafka
type RecordEventHandler struct {
	recordRepo record.Repository
	producer   producers.DeadLetterPublisher
	logger     *slog.Logger
}

// NewRecordEventHandler creates a new handler
func NewRecordEventHandler(
	logger *slog.Logger,
	recordRepo record.Repository,
	producer producers.DeadLetterPublisher,
) *RecordEventHandler {
	return &RecordEventHandler{
		recordRepo: recordRepo,
		producer:   producer,
		logger:     logger,
	}
}

// HandleMessage archives one record event. Redelivered events are detected
// by record ID and acknowledged without a second write.
func (h *RecordEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var rec record.TransactionRecord
	if err := json.Unmarshal(value, &rec); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal transaction record from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
				// Return original error if DLQ fails
			} else {
				h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	logger := h.logger
	if rec.CorrelationID != "" {
		logger = h.logger.With("correlation_id", rec.CorrelationID)
	}

	logger.Debug("Received record event for archiving",
		"record_id", rec.ID.String(),
		"account_id", rec.AccountID.String(),
		"kind", rec.Kind,
		"status", rec.Status,
	)

	if err := h.recordRepo.Create(ctx, &rec); err != nil {
		if errors.Is(err, record.ErrDuplicateRecord{}) {
			logger.Info("Record already archived, acknowledging redelivery", "record_id", rec.ID.String())
			return nil
		}
		logger.Error("Failed to archive record",
			"record_id", rec.ID.String(),
			"account_id", rec.AccountID.String(),
			"error", err,
		)
		return fmt.Errorf("archiving record %s failed: %w", rec.ID.String(), err)
	}

	logger.Info("Record archived", "record_id", rec.ID.String())
	return nil // Success, commit offset
}
