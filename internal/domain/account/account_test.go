package account

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	t.Run("SuccessfulCreation", func(t *testing.T) {
		ownerID := uuid.New()
		initialBalance := int64(10000) // 100.00
		currency := "THB"

		beforeCreation := time.Now()
		acc, err := NewAccount(ownerID, currency, initialBalance)
		afterCreation := time.Now()

		require.NoError(t, err)
		require.NotNil(t, acc)

		assert.NotEqual(t, uuid.Nil, acc.ID, "Account ID should not be nil")
		assert.Equal(t, ownerID, acc.OwnerID)
		assert.Equal(t, currency, acc.Currency)
		assert.Equal(t, initialBalance, acc.Balance)
		assert.Equal(t, 1, acc.Version, "Initial version should be 1")
		assert.Nil(t, acc.ArchivedAt)

		assert.WithinDuration(t, beforeCreation, acc.CreatedAt, afterCreation.Sub(beforeCreation)+time.Millisecond)
		assert.WithinDuration(t, acc.CreatedAt, acc.UpdatedAt, time.Millisecond)
	})

	t.Run("ZeroOpeningBalance", func(t *testing.T) {
		acc, err := NewAccount(uuid.New(), "USD", 0)
		require.NoError(t, err)
		assert.Equal(t, int64(0), acc.Balance)
	})

	t.Run("NegativeOpeningBalance", func(t *testing.T) {
		acc, err := NewAccount(uuid.New(), "USD", -1)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.Nil(t, acc)
	})

	t.Run("InvalidCurrency", func(t *testing.T) {
		acc, err := NewAccount(uuid.New(), "DOLLARS", 100)
		assert.ErrorIs(t, err, ErrInvalidCurrencyFormat)
		assert.Nil(t, acc)
	})
}

func TestAccount_Deposit(t *testing.T) {
	t.Run("SuccessfulDeposit", func(t *testing.T) {
		acc := &Account{
			ID:        uuid.New(),
			OwnerID:   uuid.New(),
			Currency:  "THB",
			Balance:   5000, // 50.00
			Version:   1,
			CreatedAt: time.Now().Add(-time.Hour),
			UpdatedAt: time.Now().Add(-time.Hour),
		}
		depositAmount := int64(2000) // 20.00

		err := acc.Deposit(depositAmount)

		require.NoError(t, err)
		assert.Equal(t, int64(7000), acc.Balance)
		assert.Equal(t, 2, acc.Version)
		assert.True(t, acc.UpdatedAt.After(acc.CreatedAt), "UpdatedAt should be after CreatedAt")
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		acc := &Account{Balance: 5000, Version: 1}

		assert.ErrorIs(t, acc.Deposit(0), ErrInvalidAmount)
		assert.ErrorIs(t, acc.Deposit(-100), ErrInvalidAmount)
		assert.Equal(t, int64(5000), acc.Balance, "balance must not change")
		assert.Equal(t, 1, acc.Version, "version must not change")
	})

	t.Run("ArchivedAccount", func(t *testing.T) {
		now := time.Now()
		acc := &Account{Balance: 5000, Version: 1, ArchivedAt: &now}

		assert.ErrorIs(t, acc.Deposit(100), ErrAccountArchived)
		assert.Equal(t, int64(5000), acc.Balance)
	})
}

func TestAccount_Withdraw(t *testing.T) {
	t.Run("SuccessfulWithdrawal", func(t *testing.T) {
		acc := &Account{
			ID:        uuid.New(),
			Currency:  "THB",
			Balance:   10000, // 100.00
			Version:   2,
			CreatedAt: time.Now().Add(-2 * time.Hour),
			UpdatedAt: time.Now().Add(-time.Minute),
		}

		err := acc.Withdraw(3000) // 30.00

		require.NoError(t, err)
		assert.Equal(t, int64(7000), acc.Balance)
		assert.Equal(t, 3, acc.Version)
	})

	t.Run("ExactBalance", func(t *testing.T) {
		acc := &Account{Balance: 1000, Version: 1}
		require.NoError(t, acc.Withdraw(1000))
		assert.Equal(t, int64(0), acc.Balance)
	})

	t.Run("InsufficientFunds", func(t *testing.T) {
		acc := &Account{Balance: 1000, Version: 1}

		assert.ErrorIs(t, acc.Withdraw(1001), ErrInsufficientFunds)
		assert.Equal(t, int64(1000), acc.Balance, "balance must not change")
		assert.Equal(t, 1, acc.Version, "version must not change")
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		acc := &Account{Balance: 1000, Version: 1}

		assert.ErrorIs(t, acc.Withdraw(0), ErrInvalidAmount)
		assert.ErrorIs(t, acc.Withdraw(-5), ErrInvalidAmount)
	})

	t.Run("ArchivedAccount", func(t *testing.T) {
		now := time.Now()
		acc := &Account{Balance: 1000, Version: 1, ArchivedAt: &now}

		assert.ErrorIs(t, acc.Withdraw(100), ErrAccountArchived)
	})
}

func TestAccount_CanWithdraw(t *testing.T) {
	t.Run("CanWithdrawSufficientFunds", func(t *testing.T) {
		acc := &Account{Balance: 1000}
		assert.True(t, acc.CanWithdraw(500))
		assert.True(t, acc.CanWithdraw(1000))
	})

	t.Run("CannotWithdrawInsufficientFunds", func(t *testing.T) {
		acc := &Account{Balance: 1000}
		assert.False(t, acc.CanWithdraw(1001))
	})
}

func TestAccount_Archive(t *testing.T) {
	t.Run("SuccessfulArchive", func(t *testing.T) {
		acc := &Account{ID: uuid.New(), Balance: 500, Version: 1}

		err := acc.Archive()

		require.NoError(t, err)
		assert.True(t, acc.Archived())
		assert.NotNil(t, acc.ArchivedAt)
		assert.Equal(t, 2, acc.Version)
	})

	t.Run("AlreadyArchived", func(t *testing.T) {
		acc := &Account{ID: uuid.New(), Version: 1}
		require.NoError(t, acc.Archive())

		assert.ErrorIs(t, acc.Archive(), ErrAccountArchived)
		assert.Equal(t, 2, acc.Version, "second archive must not bump the version")
	})
}

func TestAccount_Apply(t *testing.T) {
	t.Run("PartialUpdate", func(t *testing.T) {
		acc := &Account{ID: uuid.New(), OwnerID: uuid.New(), Currency: "THB", Version: 1}
		newOwner := uuid.New()

		err := acc.Apply(Patch{OwnerID: &newOwner})

		require.NoError(t, err)
		assert.Equal(t, newOwner, acc.OwnerID)
		assert.Equal(t, "THB", acc.Currency, "unset fields stay untouched")
		assert.Equal(t, 2, acc.Version)
	})

	t.Run("InvalidCurrency", func(t *testing.T) {
		acc := &Account{Currency: "THB", Version: 1}
		bad := "THAI BAHT"

		assert.ErrorIs(t, acc.Apply(Patch{Currency: &bad}), ErrInvalidCurrencyFormat)
		assert.Equal(t, "THB", acc.Currency)
	})

	t.Run("ArchivedAccount", func(t *testing.T) {
		now := time.Now()
		acc := &Account{Currency: "THB", Version: 1, ArchivedAt: &now}
		usd := "USD"

		assert.ErrorIs(t, acc.Apply(Patch{Currency: &usd}), ErrAccountArchived)
	})
}
