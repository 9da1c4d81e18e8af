package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/digimonpay/wallet-ledger/internal/domain/account"
)

// AccountServiceImpl implements the AccountService interface
type AccountServiceImpl struct {
	accountRepo account.Repository
}

// NewAccountService creates a new account service
func NewAccountService(accountRepo account.Repository) AccountService {
	return &AccountServiceImpl{
		accountRepo: accountRepo,
	}
}

// CreateAccount creates a new wallet for the owner
func (s *AccountServiceImpl) CreateAccount(ctx context.Context, ownerID uuid.UUID, currency string, initialBalance int64) (*account.Account, error) {
	acc, err := account.NewAccount(ownerID, currency, initialBalance)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.Create(ctx, acc); err != nil {
		return nil, err
	}

	return acc, nil
}

// GetAccountByID retrieves an account by its ID, returns ErrAccountNotFound if not found
func (s *AccountServiceImpl) GetAccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return s.accountRepo.GetByID(ctx, id)
}

// GetAccountsByOwnerID retrieves all wallets belonging to an owner
func (s *AccountServiceImpl) GetAccountsByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*account.Account, error) {
	return s.accountRepo.GetByOwnerID(ctx, ownerID)
}

// PatchAccount applies a partial update and persists the result
func (s *AccountServiceImpl) PatchAccount(ctx context.Context, id uuid.UUID, patch account.Patch) (*account.Account, error) {
	acc, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := acc.Apply(patch); err != nil {
		return nil, err
	}

	if err := s.accountRepo.Update(ctx, acc); err != nil {
		return nil, err
	}

	return acc, nil
}

// ArchiveAccount soft-deletes the account
func (s *AccountServiceImpl) ArchiveAccount(ctx context.Context, id uuid.UUID) error {
	acc, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := acc.Archive(); err != nil {
		return err
	}

	return s.accountRepo.Update(ctx, acc)
}
