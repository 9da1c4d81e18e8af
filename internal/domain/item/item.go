package item

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrEmptyName             = errors.New("item name cannot be empty")
	ErrInvalidPrice          = errors.New("item price must be positive")
	ErrItemArchived          = errors.New("item is archived")
	ErrInvalidCurrencyFormat = errors.New("currency must be a 3-letter code")
)

// Item is a purchasable catalog entry sold by a merchant. The price is
// stored in int64 minor units of the item currency.
type Item struct {
	ID                uuid.UUID  `json:"id"`
	MerchantAccountID uuid.UUID  `json:"merchant_account_id"` // Wallet credited on purchase
	Name              string     `json:"name"`
	Description       string     `json:"description,omitempty"`
	Price             int64      `json:"price"` // Minor units
	Currency          string     `json:"currency"`
	ArchivedAt        *time.Time `json:"archived_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// NewItem creates a catalog item priced in the given currency
func NewItem(merchantAccountID uuid.UUID, name, description string, price int64, currency string) (*Item, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if price <= 0 {
		return nil, ErrInvalidPrice
	}
	if len(currency) != 3 {
		return nil, ErrInvalidCurrencyFormat
	}

	now := time.Now()
	return &Item{
		ID:                uuid.New(),
		MerchantAccountID: merchantAccountID,
		Name:              name,
		Description:       description,
		Price:             price,
		Currency:          currency,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// Archived reports whether the item has been soft-deleted
func (i *Item) Archived() bool {
	return i.ArchivedAt != nil
}

// Archive soft-deletes the item so past purchases keep resolving
func (i *Item) Archive() error {
	if i.Archived() {
		return ErrItemArchived
	}
	now := time.Now()
	i.ArchivedAt = &now
	i.UpdatedAt = now
	return nil
}

// Patch is a typed partial update with named optional fields
type Patch struct {
	Name        *string
	Description *string
	Price       *int64
	Currency    *string
}

// Apply validates and applies the patch to the item
func (i *Item) Apply(p Patch) error {
	if i.Archived() {
		return ErrItemArchived
	}
	if p.Name != nil && *p.Name == "" {
		return ErrEmptyName
	}
	if p.Price != nil && *p.Price <= 0 {
		return ErrInvalidPrice
	}
	if p.Currency != nil && len(*p.Currency) != 3 {
		return ErrInvalidCurrencyFormat
	}

	if p.Name != nil {
		i.Name = *p.Name
	}
	if p.Description != nil {
		i.Description = *p.Description
	}
	if p.Price != nil {
		i.Price = *p.Price
	}
	if p.Currency != nil {
		i.Currency = *p.Currency
	}
	i.UpdatedAt = time.Now()
	return nil
}
