package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/digimonpay/wallet-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

type RecordEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// Creates a new record event producer and ensures the topic exists.
// The outbox poller marks messages processed only after a successful
// publish, so writes are synchronous.
func NewRecordEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*RecordEventProducer, error) {
	if cfg.RecordTopic == "" {
		return nil, fmt.Errorf("kafka record topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for record event producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.RecordTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure record topic %s exists: %w", cfg.RecordTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.RecordTopic,
		Balancer:     &kafka.Hash{}, // Keyed by account so per-account order is preserved
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: cfg.MaxWait,
	}

	return &RecordEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.RecordTopic,
	}, nil
}

func (p *RecordEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal record event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish record event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish record event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published record event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *RecordEventProducer) Close() error {
	p.logger.Info("Closing record event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
