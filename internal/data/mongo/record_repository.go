// Package mongo provides the MongoDB implementation of the transaction
// record archive. The archive is an eventually consistent read model fed by
// the record event stream; the PostgreSQL ledger remains authoritative.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/digimonpay/wallet-ledger/internal/domain/record"
)

const (
	// RecordCollectionName is the name of the record archive collection
	RecordCollectionName = "transaction_records"
)

// RecordRepository implements the record.Repository interface for MongoDB
type RecordRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewRecordRepository creates a new MongoDB record repository
func NewRecordRepository(logger *slog.Logger, db *mongo.Database) record.Repository {
	return &RecordRepository{
		db:     db,
		logger: logger,
	}
}

// Create archives a transaction record after checking for duplicates.
// Returns ErrDuplicateRecord if a record with the same ID already exists,
// which makes event redelivery safe.
func (r *RecordRepository) Create(ctx context.Context, rec *record.TransactionRecord) error {
	collection := r.db.Collection(RecordCollectionName)

	existing, err := r.GetByID(ctx, rec.ID)
	if err != nil && !errors.Is(err, record.ErrRecordNotFound{}) {
		r.logger.Error("Failed to check for existing record",
			"record_id", rec.ID.String(),
			"error", err)
		return fmt.Errorf("failed to check for existing record: %w", err)
	}

	if existing != nil {
		return record.ErrDuplicateRecord{RecordID: rec.ID}
	}

	_, err = collection.InsertOne(ctx, rec)
	if err != nil {
		r.logger.Error("Failed to archive transaction record",
			"record_id", rec.ID.String(),
			"error", err)
		return fmt.Errorf("failed to archive transaction record: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction record by its ID.
// Returns ErrRecordNotFound if no record exists.
func (r *RecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*record.TransactionRecord, error) {
	collection := r.db.Collection(RecordCollectionName)

	filter := bson.M{"record_id": id}
	var rec record.TransactionRecord
	err := collection.FindOne(ctx, filter).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, record.ErrRecordNotFound{RecordID: id}
		}
		r.logger.Error("Failed to get transaction record",
			"record_id", id.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get transaction record: %w", err)
	}

	return &rec, nil
}

// GetByIdempotencyKey retrieves a record using its idempotency key.
// Returns nil if no record exists, enabling idempotent submission checks.
func (r *RecordRepository) GetByIdempotencyKey(ctx context.Context, idempotencyKey string) (*record.TransactionRecord, error) {
	if idempotencyKey == "" {
		return nil, errors.New("idempotency key cannot be empty")
	}

	collection := r.db.Collection(RecordCollectionName)

	filter := bson.M{"idempotency_key": idempotencyKey}
	var rec record.TransactionRecord
	err := collection.FindOne(ctx, filter).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // No record found with this idempotency key
		}
		r.logger.Error("Failed to get record by idempotency key",
			"idempotency_key", idempotencyKey,
			"error", err)
		return nil, fmt.Errorf("failed to get record by idempotency key: %w", err)
	}

	return &rec, nil
}

// GetByAccountID retrieves paginated transaction records for an account.
// Results are sorted by creation time in descending order (newest first).
func (r *RecordRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*record.TransactionRecord, error) {
	collection := r.db.Collection(RecordCollectionName)

	filter := bson.M{"account_id": accountID}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get transaction records",
			"account_id", accountID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get transaction records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*record.TransactionRecord
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode transaction records",
			"account_id", accountID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode transaction records: %w", err)
	}

	return records, nil
}

// CountByAccountID counts the total number of records for an account
func (r *RecordRepository) CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error) {
	collection := r.db.Collection(RecordCollectionName)

	filter := bson.M{"account_id": accountID}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count transaction records",
			"account_id", accountID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count transaction records: %w", err)
	}

	return count, nil
}
