package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/digimonpay/wallet-ledger/internal/domain/account"
	"github.com/digimonpay/wallet-ledger/internal/domain/item"
	"github.com/digimonpay/wallet-ledger/internal/domain/record"
	"github.com/digimonpay/wallet-ledger/internal/engine"
	"github.com/digimonpay/wallet-ledger/internal/rates"
)

// AccountService defines the interface for wallet account operations
type AccountService interface {
	// CreateAccount creates a new wallet for an owner
	CreateAccount(ctx context.Context, ownerID uuid.UUID, currency string, initialBalance int64) (*account.Account, error)

	// GetAccountByID retrieves an account by its ID
	// Returns ErrAccountNotFound if the account doesn't exist
	GetAccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error)

	// GetAccountsByOwnerID retrieves all wallets belonging to an owner
	GetAccountsByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*account.Account, error)

	// PatchAccount applies a partial update and returns the updated account
	PatchAccount(ctx context.Context, id uuid.UUID, patch account.Patch) (*account.Account, error)

	// ArchiveAccount soft-deletes the account. Archived accounts stay
	// readable but reject all balance movements.
	ArchiveAccount(ctx context.Context, id uuid.UUID) error
}

// ItemService defines the interface for catalog item operations
type ItemService interface {
	CreateItem(ctx context.Context, merchantAccountID uuid.UUID, name, description string, price int64, currency string) (*item.Item, error)
	GetItemByID(ctx context.Context, id uuid.UUID) (*item.Item, error)
	GetItemsByMerchant(ctx context.Context, merchantAccountID uuid.UUID, page, perPage int) ([]*item.Item, error)
	PatchItem(ctx context.Context, id uuid.UUID, patch item.Patch) (*item.Item, error)
	ArchiveItem(ctx context.Context, id uuid.UUID) error
}

// TransactionService defines the interface for money movement and history
type TransactionService interface {
	// Purchase debits the buyer and credits the item's merchant atomically.
	// The returned record is COMMITTED; business failures return a
	// structured error and move no funds.
	Purchase(ctx context.Context, buyerAccountID, itemID uuid.UUID, quantity int64, idempotencyKey, correlationID string) (*record.TransactionRecord, error)

	// Exchange converts funds inside one account between currencies
	Exchange(ctx context.Context, input engine.ExchangeInput) (*record.TransactionRecord, error)

	// Deposit credits the account in its own currency
	Deposit(ctx context.Context, input engine.AdjustmentInput) (*record.TransactionRecord, error)

	// Withdraw debits the account in its own currency
	Withdraw(ctx context.Context, input engine.AdjustmentInput) (*record.TransactionRecord, error)

	// GetBalance returns a point-in-time balance snapshot
	GetBalance(ctx context.Context, accountID uuid.UUID) (engine.Balance, error)

	// GetRecordByID retrieves an archived transaction record
	GetRecordByID(ctx context.Context, recordID uuid.UUID) (*record.TransactionRecord, error)

	// GetRecordsByAccountID retrieves paginated history for an account.
	// Returns records, total count, and any error.
	GetRecordsByAccountID(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*record.TransactionRecord, int64, error)
}

// ExchangeService defines rate table reads, previews, and administration
type ExchangeService interface {
	// Quote previews a conversion without moving funds
	Quote(ctx context.Context, fromCurrency, toCurrency string, amount int64) (rates.Conversion, error)

	// BaseCurrency returns the code all rates are quoted against
	BaseCurrency() string

	// Rates returns a snapshot of the active rate table
	Rates() []rates.Entry

	// RefreshRates atomically replaces the non-base rate table
	RefreshRates(ctx context.Context, entries []rates.Entry) error
}
