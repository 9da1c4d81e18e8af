package item

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines item persistence operations
type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	GetByMerchantAccountID(ctx context.Context, merchantAccountID uuid.UUID, limit, offset int) ([]*Item, error)
	Update(ctx context.Context, item *Item) error
}

// ErrItemNotFound indicates missing item
type ErrItemNotFound struct {
	ItemID uuid.UUID
}

func (e ErrItemNotFound) Error() string {
	return "item not found: " + e.ItemID.String()
}

// Is matches any ErrItemNotFound when the target carries a nil UUID
func (e ErrItemNotFound) Is(target error) bool {
	t, ok := target.(ErrItemNotFound)
	if !ok {
		return false
	}
	if t.ItemID == uuid.Nil {
		return true
	}
	return e.ItemID == t.ItemID
}
