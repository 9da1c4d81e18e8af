package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrAccountArchived       = errors.New("account is archived")
	ErrInvalidCurrencyFormat = errors.New("currency must be a 3-letter code")
)

// Account is a balance-holding wallet in a single currency. Balances are
// stored as int64 minor units of the account currency, never floating point.
type Account struct {
	ID         uuid.UUID  `json:"id"`
	OwnerID    uuid.UUID  `json:"owner_id"`
	Currency   string     `json:"currency"`
	Balance    int64      `json:"balance"` // Minor units (e.g. satang, cents)
	Version    int        `json:"version"` // For optimistic locking
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewAccount creates a wallet for an owner with an optional opening balance
func NewAccount(ownerID uuid.UUID, currency string, initialBalance int64) (*Account, error) {
	if len(currency) != 3 {
		return nil, ErrInvalidCurrencyFormat
	}
	if initialBalance < 0 {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	return &Account{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Currency:  currency,
		Balance:   initialBalance,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Archived reports whether the account has been soft-deleted
func (a *Account) Archived() bool {
	return a.ArchivedAt != nil
}

// Archive soft-deletes the account. Archived accounts stay readable so
// transaction history keeps resolving, but reject all balance movements.
func (a *Account) Archive() error {
	if a.Archived() {
		return ErrAccountArchived
	}
	now := time.Now()
	a.ArchivedAt = &now
	a.UpdatedAt = now
	a.Version++
	return nil
}

// Deposit adds the specified amount to the account balance
func (a *Account) Deposit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if a.Archived() {
		return ErrAccountArchived
	}

	a.Balance += amount
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}

// Withdraw subtracts the specified amount from the account balance
func (a *Account) Withdraw(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if a.Archived() {
		return ErrAccountArchived
	}
	if a.Balance < amount {
		return ErrInsufficientFunds
	}

	a.Balance -= amount
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}

// CanWithdraw checks if the account holds sufficient funds for a debit
func (a *Account) CanWithdraw(amount int64) bool {
	return a.Balance >= amount
}

// Patch is a typed partial update. Only non-nil fields are applied, so a
// caller can change one attribute without racing on the rest.
type Patch struct {
	OwnerID  *uuid.UUID
	Currency *string
}

// Apply validates and applies the patch to the account
func (a *Account) Apply(p Patch) error {
	if a.Archived() {
		return ErrAccountArchived
	}
	if p.Currency != nil && len(*p.Currency) != 3 {
		return ErrInvalidCurrencyFormat
	}

	if p.OwnerID != nil {
		a.OwnerID = *p.OwnerID
	}
	if p.Currency != nil {
		a.Currency = *p.Currency
	}
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}
