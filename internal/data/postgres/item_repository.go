package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/digimonpay/wallet-ledger/internal/domain/item"
	"github.com/digimonpay/wallet-ledger/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ItemRepository implements the item.Repository interface for PostgreSQL
type ItemRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewItemRepository creates a new PostgreSQL item repository
func NewItemRepository(logger *slog.Logger, db *persistence.PostgresDB) item.Repository {
	return &ItemRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Create stores a new catalog item in the database
func (r *ItemRepository) Create(ctx context.Context, it *item.Item) error {
	query := `
		INSERT INTO items (id, merchant_account_id, name, description, price, currency, archived_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.querier.Exec(ctx, query,
		it.ID,
		it.MerchantAccountID,
		it.Name,
		it.Description,
		it.Price,
		it.Currency,
		it.ArchivedAt,
		it.CreatedAt,
		it.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create item", "error", err)
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

// GetByID retrieves an item by its ID
func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	query := `
		SELECT id, merchant_account_id, name, description, price, currency, archived_at, created_at, updated_at
		FROM items
		WHERE id = $1
	`

	var it item.Item
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&it.ID,
		&it.MerchantAccountID,
		&it.Name,
		&it.Description,
		&it.Price,
		&it.Currency,
		&it.ArchivedAt,
		&it.CreatedAt,
		&it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, item.ErrItemNotFound{ItemID: id}
		}
		r.logger.Error("Failed to get item", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return &it, nil
}

// GetByMerchantAccountID retrieves a merchant's catalog with pagination
func (r *ItemRepository) GetByMerchantAccountID(ctx context.Context, merchantAccountID uuid.UUID, limit, offset int) ([]*item.Item, error) {
	query := `
		SELECT id, merchant_account_id, name, description, price, currency, archived_at, created_at, updated_at
		FROM items
		WHERE merchant_account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, merchantAccountID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to get items by merchant", "merchant_account_id", merchantAccountID.String(), "error", err)
		return nil, fmt.Errorf("failed to get items by merchant: %w", err)
	}
	defer rows.Close()

	var items []*item.Item
	for rows.Next() {
		var it item.Item
		err := rows.Scan(
			&it.ID,
			&it.MerchantAccountID,
			&it.Name,
			&it.Description,
			&it.Price,
			&it.Currency,
			&it.ArchivedAt,
			&it.CreatedAt,
			&it.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate item rows: %w", err)
	}

	return items, nil
}

// Update updates an existing catalog item in the database
func (r *ItemRepository) Update(ctx context.Context, it *item.Item) error {
	query := `
		UPDATE items
		SET name = $1, description = $2, price = $3, currency = $4, archived_at = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := r.querier.Exec(ctx, query,
		it.Name,
		it.Description,
		it.Price,
		it.Currency,
		it.ArchivedAt,
		it.UpdatedAt,
		it.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update item", "id", it.ID.String(), "error", err)
		return fmt.Errorf("failed to update item: %w", err)
	}

	if result.RowsAffected() == 0 {
		return item.ErrItemNotFound{ItemID: it.ID}
	}

	return nil
}
