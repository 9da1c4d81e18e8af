package record

import (
	"context"

	"github.com/google/uuid"
)

// Repository manages the transaction record archive. Records are append-only:
// there is deliberately no update or delete operation.
type Repository interface {
	Create(ctx context.Context, rec *TransactionRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*TransactionRecord, error)
	GetByIdempotencyKey(ctx context.Context, idempotencyKey string) (*TransactionRecord, error)
	GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*TransactionRecord, error)
	CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// ErrRecordNotFound indicates missing transaction record
type ErrRecordNotFound struct {
	RecordID uuid.UUID
}

func (e ErrRecordNotFound) Error() string {
	return "transaction record not found: " + e.RecordID.String()
}

// Is matches any ErrRecordNotFound when the target carries a nil UUID
func (e ErrRecordNotFound) Is(target error) bool {
	t, ok := target.(ErrRecordNotFound)
	if !ok {
		return false
	}
	if t.RecordID == uuid.Nil {
		return true
	}
	return e.RecordID == t.RecordID
}

// ErrDuplicateRecord indicates record uniqueness violation
type ErrDuplicateRecord struct {
	RecordID uuid.UUID
}

func (e ErrDuplicateRecord) Error() string {
	return "duplicate transaction record: " + e.RecordID.String()
}

// Is matches any ErrDuplicateRecord when the target carries a nil UUID
func (e ErrDuplicateRecord) Is(target error) bool {
	t, ok := target.(ErrDuplicateRecord)
	if !ok {
		return false
	}
	if t.RecordID == uuid.Nil {
		return true
	}
	return e.RecordID == t.RecordID
}
