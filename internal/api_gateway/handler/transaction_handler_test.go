package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/digimonpay/wallet-ledger/internal/api_gateway/service"
	"github.com/digimonpay/wallet-ledger/internal/domain/account"
	"github.com/digimonpay/wallet-ledger/internal/domain/item"
	"github.com/digimonpay/wallet-ledger/internal/domain/record"
	"github.com/digimonpay/wallet-ledger/internal/domain/shared"
	"github.com/digimonpay/wallet-ledger/internal/engine"
	"github.com/digimonpay/wallet-ledger/internal/ledgerstore"
	"github.com/digimonpay/wallet-ledger/internal/rates"
)

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) Purchase(ctx context.Context, buyerAccountID, itemID uuid.UUID, quantity int64, idempotencyKey, correlationID string) (*record.TransactionRecord, error) {
	args := m.Called(ctx, buyerAccountID, itemID, quantity, idempotencyKey, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*record.TransactionRecord), args.Error(1)
}

func (m *MockTransactionService) Exchange(ctx context.Context, input engine.ExchangeInput) (*record.TransactionRecord, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*record.TransactionRecord), args.Error(1)
}

func (m *MockTransactionService) Deposit(ctx context.Context, input engine.AdjustmentInput) (*record.TransactionRecord, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*record.TransactionRecord), args.Error(1)
}

func (m *MockTransactionService) Withdraw(ctx context.Context, input engine.AdjustmentInput) (*record.TransactionRecord, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*record.TransactionRecord), args.Error(1)
}

func (m *MockTransactionService) GetBalance(ctx context.Context, accountID uuid.UUID) (engine.Balance, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(engine.Balance), args.Error(1)
}

func (m *MockTransactionService) GetRecordByID(ctx context.Context, recordID uuid.UUID) (*record.TransactionRecord, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*record.TransactionRecord), args.Error(1)
}

func (m *MockTransactionService) GetRecordsByAccountID(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*record.TransactionRecord, int64, error) {
	args := m.Called(ctx, accountID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*record.TransactionRecord), args.Get(1).(int64), args.Error(2)
}

var _ service.TransactionService = (*MockTransactionService)(nil)

func purchaseRecord(buyerID, sellerID uuid.UUID) *record.TransactionRecord {
	return &record.TransactionRecord{
		ID:                    uuid.New(),
		AccountID:             buyerID,
		CounterpartyAccountID: &sellerID,
		Kind:                  shared.RecordKindPurchase,
		Amount:                6000,
		Currency:              "THB",
		BaseAmount:            6000,
		Status:                shared.RecordStatusCommitted,
		CreatedAt:             time.Now(),
	}
}

func TestTransactionHandler_Purchase(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	buyerID := uuid.New()
	itemID := uuid.New()

	newPurchaseRequest := func(body string) (*httptest.ResponseRecorder, *http.Request) {
		req, _ := http.NewRequest(http.MethodPost, "/transactions/purchase", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		return httptest.NewRecorder(), req
	}

	validBody := func() string {
		b, _ := json.Marshal(PurchaseRequest{
			BuyerAccountID: buyerID.String(),
			ItemID:         itemID.String(),
			Quantity:       2,
			IdempotencyKey: "key1",
		})
		return string(b)
	}

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		sellerID := uuid.New()
		rec := purchaseRecord(buyerID, sellerID)
		mockService.On("Purchase", mock.Anything, buyerID, itemID, int64(2), "key1", mock.Anything).Return(rec, nil)

		router := setupTestRouter()
		router.POST("/transactions/purchase", handler.Purchase)

		rr, req := newPurchaseRequest(validBody())
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var responseBody RecordResponse
		decodeData(t, rr.Body.Bytes(), &responseBody)
		assert.Equal(t, rec.ID.String(), responseBody.ID)
		assert.Equal(t, buyerID.String(), responseBody.AccountID)
		assert.Equal(t, sellerID.String(), responseBody.CounterpartyAccountID)
		assert.Equal(t, "PURCHASE", responseBody.Kind)
		assert.Equal(t, "COMMITTED", responseBody.Status)

		mockService.AssertExpectations(t)
	})

	t.Run("InvalidRequestBody", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/transactions/purchase", handler.Purchase)

		rr, req := newPurchaseRequest(`{"quantity":0}`)
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("InsufficientFunds", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		mockService.On("Purchase", mock.Anything, buyerID, itemID, int64(2), "key1", mock.Anything).
			Return(nil, account.ErrInsufficientFunds)

		router := setupTestRouter()
		router.POST("/transactions/purchase", handler.Purchase)

		rr, req := newPurchaseRequest(validBody())
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

		var response Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		require.NotNil(t, response.Error)
		assert.Equal(t, "INSUFFICIENT_FUNDS", response.Error.Code)

		mockService.AssertExpectations(t)
	})

	t.Run("BuyerNotFound", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		mockService.On("Purchase", mock.Anything, buyerID, itemID, int64(2), "key1", mock.Anything).
			Return(nil, account.ErrAccountNotFound{AccountID: buyerID})

		router := setupTestRouter()
		router.POST("/transactions/purchase", handler.Purchase)

		rr, req := newPurchaseRequest(validBody())
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("ItemNotFound", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		mockService.On("Purchase", mock.Anything, buyerID, itemID, int64(2), "key1", mock.Anything).
			Return(nil, item.ErrItemNotFound{ItemID: itemID})

		router := setupTestRouter()
		router.POST("/transactions/purchase", handler.Purchase)

		rr, req := newPurchaseRequest(validBody())
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("SelfPurchaseRejected", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		mockService.On("Purchase", mock.Anything, buyerID, itemID, int64(2), "key1", mock.Anything).
			Return(nil, ledgerstore.ErrSameAccount)

		router := setupTestRouter()
		router.POST("/transactions/purchase", handler.Purchase)

		rr, req := newPurchaseRequest(validBody())
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("LockTimeout", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		mockService.On("Purchase", mock.Anything, buyerID, itemID, int64(2), "key1", mock.Anything).
			Return(nil, ledgerstore.ErrLockTimeout{AccountID: buyerID})

		router := setupTestRouter()
		router.POST("/transactions/purchase", handler.Purchase)

		rr, req := newPurchaseRequest(validBody())
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

		var response Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		require.NotNil(t, response.Error)
		assert.Equal(t, "SERVICE_UNAVAILABLE", response.Error.Code)

		mockService.AssertExpectations(t)
	})
}

func TestTransactionHandler_Exchange(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	accountID := uuid.New()

	exchangeBody := func() string {
		b, _ := json.Marshal(ExchangeRequest{
			AccountID:    accountID.String(),
			FromCurrency: "THB",
			ToCurrency:   "USD",
			Amount:       5000,
		})
		return string(b)
	}

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		rec := &record.TransactionRecord{
			ID:              uuid.New(),
			AccountID:       accountID,
			Kind:            shared.RecordKindExchange,
			Amount:          5000,
			Currency:        "THB",
			BaseAmount:      5000,
			ConvertedAmount: 143,
			ToCurrency:      "USD",
			Status:          shared.RecordStatusCommitted,
			CreatedAt:       time.Now(),
		}
		mockService.On("Exchange", mock.Anything, mock.MatchedBy(func(input engine.ExchangeInput) bool {
			return input.AccountID == accountID && input.FromCurrency == "THB" && input.ToCurrency == "USD" && input.Amount == 5000
		})).Return(rec, nil)

		router := setupTestRouter()
		router.POST("/transactions/exchange", handler.Exchange)

		req, _ := http.NewRequest(http.MethodPost, "/transactions/exchange", bytes.NewBufferString(exchangeBody()))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var responseBody RecordResponse
		decodeData(t, rr.Body.Bytes(), &responseBody)
		assert.Equal(t, int64(143), responseBody.ConvertedAmount)
		assert.Equal(t, "USD", responseBody.ToCurrency)

		mockService.AssertExpectations(t)
	})

	t.Run("UnknownCurrency", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		mockService.On("Exchange", mock.Anything, mock.Anything).Return(nil, rates.ErrUnknownCurrency{Code: "XXX"})

		router := setupTestRouter()
		router.POST("/transactions/exchange", handler.Exchange)

		req, _ := http.NewRequest(http.MethodPost, "/transactions/exchange", bytes.NewBufferString(exchangeBody()))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var response Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		require.NotNil(t, response.Error)
		assert.Equal(t, "UNKNOWN_CURRENCY", response.Error.Code)

		mockService.AssertExpectations(t)
	})

	t.Run("SameCurrencyRejected", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		mockService.On("Exchange", mock.Anything, mock.Anything).Return(nil, rates.ErrInvalidConversion)

		router := setupTestRouter()
		router.POST("/transactions/exchange", handler.Exchange)

		req, _ := http.NewRequest(http.MethodPost, "/transactions/exchange", bytes.NewBufferString(exchangeBody()))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var response Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		require.NotNil(t, response.Error)
		assert.Equal(t, "INVALID_CONVERSION", response.Error.Code)

		mockService.AssertExpectations(t)
	})
}

func TestTransactionHandler_Adjustments(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	accountID := uuid.New()

	adjustmentBody := func() string {
		b, _ := json.Marshal(AdjustmentRequest{
			AccountID: accountID.String(),
			Amount:    1000,
		})
		return string(b)
	}

	t.Run("DepositSuccess", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		rec := &record.TransactionRecord{
			ID:        uuid.New(),
			AccountID: accountID,
			Kind:      shared.RecordKindDeposit,
			Amount:    1000,
			Currency:  "THB",
			Status:    shared.RecordStatusCommitted,
			CreatedAt: time.Now(),
		}
		mockService.On("Deposit", mock.Anything, mock.MatchedBy(func(input engine.AdjustmentInput) bool {
			return input.AccountID == accountID && input.Amount == 1000
		})).Return(rec, nil)

		router := setupTestRouter()
		router.POST("/transactions/deposit", handler.Deposit)

		req, _ := http.NewRequest(http.MethodPost, "/transactions/deposit", bytes.NewBufferString(adjustmentBody()))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("WithdrawArchivedAccount", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		mockService.On("Withdraw", mock.Anything, mock.Anything).Return(nil, account.ErrAccountArchived)

		router := setupTestRouter()
		router.POST("/transactions/withdraw", handler.Withdraw)

		req, _ := http.NewRequest(http.MethodPost, "/transactions/withdraw", bytes.NewBufferString(adjustmentBody()))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("NonPositiveAmountRejectedByBinding", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/transactions/deposit", handler.Deposit)

		body := `{"account_id":"` + accountID.String() + `","amount":-5}`
		req, _ := http.NewRequest(http.MethodPost, "/transactions/deposit", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestTransactionHandler_GetBalance(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		accountID := uuid.New()
		mockService.On("GetBalance", mock.Anything, accountID).
			Return(engine.Balance{AccountID: accountID, Currency: "THB", Balance: 12345}, nil)

		router := setupTestRouter()
		router.GET("/accounts/:id/balance", handler.GetBalance)

		req, _ := http.NewRequest(http.MethodGet, "/accounts/"+accountID.String()+"/balance", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var responseBody BalanceResponse
		decodeData(t, rr.Body.Bytes(), &responseBody)
		assert.Equal(t, accountID.String(), responseBody.AccountID)
		assert.Equal(t, int64(12345), responseBody.Balance)
		assert.Equal(t, "THB", responseBody.Currency)

		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		accountID := uuid.New()
		mockService.On("GetBalance", mock.Anything, accountID).
			Return(engine.Balance{}, account.ErrAccountNotFound{AccountID: accountID})

		router := setupTestRouter()
		router.GET("/accounts/:id/balance", handler.GetBalance)

		req, _ := http.NewRequest(http.MethodGet, "/accounts/"+accountID.String()+"/balance", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestTransactionHandler_GetByAccountID(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	mockService := new(MockTransactionService)
	handler := NewTransactionHandler(logger, mockService)

	accountID := uuid.New()
	sellerID := uuid.New()
	records := []*record.TransactionRecord{purchaseRecord(accountID, sellerID)}

	mockService.On("GetRecordsByAccountID", mock.Anything, accountID, 2, 5).Return(records, int64(11), nil)

	router := setupTestRouter()
	router.GET("/accounts/:id/records", handler.GetByAccountID)

	req, _ := http.NewRequest(http.MethodGet, "/accounts/"+accountID.String()+"/records?page=2&per_page=5", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var response Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	require.NotNil(t, response.Meta)
	assert.Equal(t, 2, response.Meta.Page)
	assert.Equal(t, 5, response.Meta.PerPage)
	assert.Equal(t, 11, response.Meta.TotalItems)
	assert.Equal(t, 3, response.Meta.TotalPages)

	mockService.AssertExpectations(t)
}

func TestTransactionHandler_GetByID(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		rec := purchaseRecord(uuid.New(), uuid.New())
		mockService.On("GetRecordByID", mock.Anything, rec.ID).Return(rec, nil)

		router := setupTestRouter()
		router.GET("/transactions/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/transactions/"+rec.ID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockTransactionService)
		handler := NewTransactionHandler(logger, mockService)

		recordID := uuid.New()
		mockService.On("GetRecordByID", mock.Anything, recordID).Return(nil, record.ErrRecordNotFound{RecordID: recordID})

		router := setupTestRouter()
		router.GET("/transactions/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/transactions/"+recordID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})
}
