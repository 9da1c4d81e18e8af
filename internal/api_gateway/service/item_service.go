package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/digimonpay/wallet-ledger/internal/domain/account"
	"github.com/digimonpay/wallet-ledger/internal/domain/item"
)

// ItemServiceImpl implements the ItemService interface
type ItemServiceImpl struct {
	itemRepo    item.Repository
	accountRepo account.Repository
}

// NewItemService creates a new item service
func NewItemService(itemRepo item.Repository, accountRepo account.Repository) ItemService {
	return &ItemServiceImpl{
		itemRepo:    itemRepo,
		accountRepo: accountRepo,
	}
}

// CreateItem creates a catalog item after verifying the merchant wallet
// exists and is active
func (s *ItemServiceImpl) CreateItem(ctx context.Context, merchantAccountID uuid.UUID, name, description string, price int64, currency string) (*item.Item, error) {
	merchant, err := s.accountRepo.GetByID(ctx, merchantAccountID)
	if err != nil {
		return nil, err
	}
	if merchant.Archived() {
		return nil, account.ErrAccountArchived
	}

	it, err := item.NewItem(merchantAccountID, name, description, price, currency)
	if err != nil {
		return nil, err
	}

	if err := s.itemRepo.Create(ctx, it); err != nil {
		return nil, err
	}

	return it, nil
}

// GetItemByID retrieves an item by its ID, returns ErrItemNotFound if not found
func (s *ItemServiceImpl) GetItemByID(ctx context.Context, id uuid.UUID) (*item.Item, error) {
	return s.itemRepo.GetByID(ctx, id)
}

// GetItemsByMerchant retrieves a merchant's catalog with pagination
func (s *ItemServiceImpl) GetItemsByMerchant(ctx context.Context, merchantAccountID uuid.UUID, page, perPage int) ([]*item.Item, error) {
	offset := (page - 1) * perPage
	return s.itemRepo.GetByMerchantAccountID(ctx, merchantAccountID, perPage, offset)
}

// PatchItem applies a partial update and persists the result
func (s *ItemServiceImpl) PatchItem(ctx context.Context, id uuid.UUID, patch item.Patch) (*item.Item, error) {
	it, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := it.Apply(patch); err != nil {
		return nil, err
	}

	if err := s.itemRepo.Update(ctx, it); err != nil {
		return nil, err
	}

	return it, nil
}

// ArchiveItem soft-deletes the item so it can no longer be purchased
func (s *ItemServiceImpl) ArchiveItem(ctx context.Context, id uuid.UUID) error {
	it, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := it.Archive(); err != nil {
		return err
	}

	return s.itemRepo.Update(ctx, it)
}
