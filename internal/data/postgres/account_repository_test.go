package postgres

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digimonpay/wallet-ledger/internal/domain/account"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

const accountColumnsQuery = `id, owner_id, currency, balance, version, archived_at, created_at, updated_at`

func accountRows(accs ...*account.Account) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"id", "owner_id", "currency", "balance", "version", "archived_at", "created_at", "updated_at"})
	for _, acc := range accs {
		rows.AddRow(acc.ID, acc.OwnerID, acc.Currency, acc.Balance, acc.Version, acc.ArchivedAt, acc.CreatedAt, acc.UpdatedAt)
	}
	return rows
}

func TestAccountRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}

	acc := &account.Account{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		Currency:  "THB",
		Balance:   1000,
		Version:   1,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
		INSERT INTO accounts \(id, owner_id, currency, balance, version, archived_at, created_at, updated_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8\)
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(acc.ID, acc.OwnerID, acc.Currency, acc.Balance, acc.Version, acc.ArchivedAt, acc.CreatedAt, acc.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, acc)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(acc.ID, acc.OwnerID, acc.Currency, acc.Balance, acc.Version, acc.ArchivedAt, acc.CreatedAt, acc.UpdatedAt).
			WillReturnError(expectedErr)

		err := repo.Create(ctx, acc)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create account")
		assert.ErrorIs(t, err, expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	accID := uuid.New()
	now := time.Now()

	expectedAccount := &account.Account{
		ID:        accID,
		OwnerID:   uuid.New(),
		Currency:  "THB",
		Balance:   1000,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
		SELECT ` + accountColumnsQuery + `
		FROM accounts
		WHERE id = \$1
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(accID).WillReturnRows(accountRows(expectedAccount))

		acc, err := repo.GetByID(ctx, accID)
		assert.NoError(t, err)
		assert.Equal(t, expectedAccount, acc)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(accID).WillReturnError(pgx.ErrNoRows)

		acc, err := repo.GetByID(ctx, accID)
		assert.Error(t, err)
		assert.Nil(t, acc)
		var accNotFoundErr account.ErrAccountNotFound
		assert.ErrorAs(t, err, &accNotFoundErr)
		assert.Equal(t, accID, accNotFoundErr.AccountID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("some db error")
		mock.ExpectQuery(query).WithArgs(accID).WillReturnError(dbErr)

		acc, err := repo.GetByID(ctx, accID)
		assert.Error(t, err)
		assert.Nil(t, acc)
		assert.Contains(t, err.Error(), "failed to get account")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_GetByOwnerID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	ownerID := uuid.New()
	now := time.Now()

	first := &account.Account{ID: uuid.New(), OwnerID: ownerID, Currency: "THB", Balance: 100, Version: 1, CreatedAt: now.Add(-time.Hour), UpdatedAt: now}
	second := &account.Account{ID: uuid.New(), OwnerID: ownerID, Currency: "USD", Balance: 200, Version: 1, CreatedAt: now, UpdatedAt: now}

	query := `
		SELECT ` + accountColumnsQuery + `
		FROM accounts
		WHERE owner_id = \$1
		ORDER BY created_at ASC
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(ownerID).WillReturnRows(accountRows(first, second))

		accounts, err := repo.GetByOwnerID(ctx, ownerID)
		assert.NoError(t, err)
		require.Len(t, accounts, 2)
		assert.Equal(t, first.ID, accounts[0].ID)
		assert.Equal(t, second.ID, accounts[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no accounts", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(ownerID).WillReturnRows(accountRows())

		accounts, err := repo.GetByOwnerID(ctx, ownerID)
		assert.NoError(t, err)
		assert.Empty(t, accounts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("query failed")
		mock.ExpectQuery(query).WithArgs(ownerID).WillReturnError(dbErr)

		accounts, err := repo.GetByOwnerID(ctx, ownerID)
		assert.Error(t, err)
		assert.Nil(t, accounts)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_Update(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	now := time.Now()
	accToUpdate := &account.Account{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		Currency:  "THB",
		Balance:   1500,
		Version:   2, // New version after update
		UpdatedAt: now,
	}
	previousVersion := accToUpdate.Version - 1

	query := `
		UPDATE accounts
		SET owner_id = \$1, currency = \$2, balance = \$3, version = \$4, archived_at = \$5, updated_at = \$6
		WHERE id = \$7 AND version = \$8
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(accToUpdate.OwnerID, accToUpdate.Currency, accToUpdate.Balance, accToUpdate.Version, accToUpdate.ArchivedAt, accToUpdate.UpdatedAt, accToUpdate.ID, previousVersion).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.Update(ctx, accToUpdate)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("concurrent modification", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(accToUpdate.OwnerID, accToUpdate.Currency, accToUpdate.Balance, accToUpdate.Version, accToUpdate.ArchivedAt, accToUpdate.UpdatedAt, accToUpdate.ID, previousVersion).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0)) // 0 rows affected

		err := repo.Update(ctx, accToUpdate)
		assert.Error(t, err)
		var concurrentModErr account.ErrConcurrentModification
		assert.ErrorAs(t, err, &concurrentModErr)
		assert.Equal(t, accToUpdate.ID, concurrentModErr.AccountID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("update db error")
		mock.ExpectExec(query).
			WithArgs(accToUpdate.OwnerID, accToUpdate.Currency, accToUpdate.Balance, accToUpdate.Version, accToUpdate.ArchivedAt, accToUpdate.UpdatedAt, accToUpdate.ID, previousVersion).
			WillReturnError(dbErr)

		err := repo.Update(ctx, accToUpdate)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to update account")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_LockForUpdate(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	accID := uuid.New()
	now := time.Now()

	expectedAccount := &account.Account{
		ID:        accID,
		OwnerID:   uuid.New(),
		Currency:  "THB",
		Balance:   2000,
		Version:   3,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
		SELECT ` + accountColumnsQuery + `
		FROM accounts
		WHERE id = \$1
		FOR UPDATE
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(accID).WillReturnRows(accountRows(expectedAccount))

		acc, err := repo.LockForUpdate(ctx, accID)
		assert.NoError(t, err)
		assert.Equal(t, expectedAccount, acc)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(accID).WillReturnError(pgx.ErrNoRows)

		acc, err := repo.LockForUpdate(ctx, accID)
		assert.Error(t, err)
		assert.Nil(t, acc)
		var accNotFoundErr account.ErrAccountNotFound
		assert.ErrorAs(t, err, &accNotFoundErr)
		assert.Equal(t, accID, accNotFoundErr.AccountID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("lock db error")
		mock.ExpectQuery(query).WithArgs(accID).WillReturnError(dbErr)

		acc, err := repo.LockForUpdate(ctx, accID)
		assert.Error(t, err)
		assert.Nil(t, acc)
		assert.Contains(t, err.Error(), "failed to lock account for update")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_WithTx(t *testing.T) {
	logger := newTestLogger()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	originalRepo := &AccountRepository{querier: mockPool, logger: logger}

	mockPool.ExpectBegin()
	pgxTx, err := mockPool.Begin(context.Background())
	require.NoError(t, err)

	txRepo := originalRepo.WithTx(pgxTx)

	assert.NotNil(t, txRepo)
	assert.Equal(t, originalRepo.logger, txRepo.(*AccountRepository).logger)
	assert.Equal(t, pgxTx, txRepo.(*AccountRepository).querier, "Querier in new repo should be the transaction")

	assert.NoError(t, mockPool.ExpectationsWereMet())
}
