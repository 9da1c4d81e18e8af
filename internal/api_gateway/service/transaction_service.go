package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/digimonpay/wallet-ledger/internal/domain/item"
	"github.com/digimonpay/wallet-ledger/internal/domain/record"
	"github.com/digimonpay/wallet-ledger/internal/engine"
)

// TransactionServiceImpl implements the TransactionService interface. Money
// movements run synchronously through the engine; history reads go to the
// record archive, which trails the ledger by the outbox publishing delay.
type TransactionServiceImpl struct {
	engine     engine.Engine
	itemRepo   item.Repository
	recordRepo record.Repository
	logger     *slog.Logger
}

// NewTransactionService creates a new transaction service
func NewTransactionService(
	logger *slog.Logger,
	eng engine.Engine,
	itemRepo item.Repository,
	recordRepo record.Repository,
) TransactionService {
	return &TransactionServiceImpl{
		engine:     eng,
		itemRepo:   itemRepo,
		recordRepo: recordRepo,
		logger:     logger,
	}
}

// Purchase resolves the item to its merchant wallet and unit price, then
// executes the debit/credit pair atomically through the engine
func (s *TransactionServiceImpl) Purchase(ctx context.Context, buyerAccountID, itemID uuid.UUID, quantity int64, idempotencyKey, correlationID string) (*record.TransactionRecord, error) {
	it, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it.Archived() {
		return nil, item.ErrItemArchived
	}

	if existing, err := s.findByIdempotencyKey(ctx, idempotencyKey); err != nil {
		return nil, err
	} else if existing != nil {
		s.logger.Info("Purchase already committed for idempotency key, returning existing record",
			"idempotency_key", idempotencyKey, "record_id", existing.ID.String())
		return existing, nil
	}

	return s.engine.Purchase(ctx, engine.PurchaseInput{
		BuyerAccountID:  buyerAccountID,
		SellerAccountID: it.MerchantAccountID,
		UnitPrice:       it.Price,
		Quantity:        quantity,
		Currency:        it.Currency,
		IdempotencyKey:  idempotencyKey,
		CorrelationID:   correlationID,
	})
}

// Exchange converts funds inside one account between currencies
func (s *TransactionServiceImpl) Exchange(ctx context.Context, input engine.ExchangeInput) (*record.TransactionRecord, error) {
	if existing, err := s.findByIdempotencyKey(ctx, input.IdempotencyKey); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}
	return s.engine.Exchange(ctx, input)
}

// Deposit credits the account in its own currency
func (s *TransactionServiceImpl) Deposit(ctx context.Context, input engine.AdjustmentInput) (*record.TransactionRecord, error) {
	if existing, err := s.findByIdempotencyKey(ctx, input.IdempotencyKey); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}
	return s.engine.Deposit(ctx, input)
}

// Withdraw debits the account in its own currency
func (s *TransactionServiceImpl) Withdraw(ctx context.Context, input engine.AdjustmentInput) (*record.TransactionRecord, error) {
	if existing, err := s.findByIdempotencyKey(ctx, input.IdempotencyKey); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}
	return s.engine.Withdraw(ctx, input)
}

// GetBalance returns a point-in-time balance snapshot
func (s *TransactionServiceImpl) GetBalance(ctx context.Context, accountID uuid.UUID) (engine.Balance, error) {
	return s.engine.GetBalance(ctx, accountID)
}

// GetRecordByID retrieves an archived transaction record
func (s *TransactionServiceImpl) GetRecordByID(ctx context.Context, recordID uuid.UUID) (*record.TransactionRecord, error) {
	return s.recordRepo.GetByID(ctx, recordID)
}

// GetRecordsByAccountID retrieves paginated history for an account
func (s *TransactionServiceImpl) GetRecordsByAccountID(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*record.TransactionRecord, int64, error) {
	offset := (page - 1) * perPage

	records, err := s.recordRepo.GetByAccountID(ctx, accountID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.recordRepo.CountByAccountID(ctx, accountID)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// findByIdempotencyKey checks the archive for a committed record carrying
// the key. The archive is eventually consistent, so this is best effort;
// a submission racing its own retry may still commit twice until the first
// record lands in the archive.
func (s *TransactionServiceImpl) findByIdempotencyKey(ctx context.Context, key string) (*record.TransactionRecord, error) {
	if key == "" {
		return nil, nil
	}

	existing, err := s.recordRepo.GetByIdempotencyKey(ctx, key)
	if err != nil {
		s.logger.Error("Failed to check idempotency key", "idempotency_key", key, "error", err)
		return nil, err
	}
	return existing, nil
}
