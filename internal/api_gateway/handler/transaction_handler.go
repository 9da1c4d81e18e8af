package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/digimonpay/wallet-ledger/internal/api_gateway/middleware"
	"github.com/digimonpay/wallet-ledger/internal/api_gateway/service"
	"github.com/digimonpay/wallet-ledger/internal/domain/account"
	"github.com/digimonpay/wallet-ledger/internal/domain/item"
	"github.com/digimonpay/wallet-ledger/internal/domain/record"
	"github.com/digimonpay/wallet-ledger/internal/engine"
	"github.com/digimonpay/wallet-ledger/internal/ledgerstore"
	"github.com/digimonpay/wallet-ledger/internal/rates"
)

// TransactionHandler handles HTTP requests for money movement operations.
// All movements are synchronous: the response carries a COMMITTED record or
// a structured error, never a pending state.
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// Purchase buys a catalog item, debiting the buyer and crediting the
// item's merchant atomically
func (h *TransactionHandler) Purchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	buyerAccountID, err := uuid.Parse(req.BuyerAccountID)
	if err != nil {
		RespondBadRequest(c, "Invalid buyer account ID")
		return
	}
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		RespondBadRequest(c, "Invalid item ID")
		return
	}

	rec, err := h.transactionService.Purchase(
		c.Request.Context(),
		buyerAccountID,
		itemID,
		req.Quantity,
		req.IdempotencyKey,
		middleware.GetCorrelationID(c),
	)
	if err != nil {
		h.respondMovementError(c, err)
		return
	}

	RespondCreated(c, mapRecordToResponse(rec))
}

// Exchange converts funds inside one account between currencies
func (h *TransactionHandler) Exchange(c *gin.Context) {
	var req ExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	rec, err := h.transactionService.Exchange(c.Request.Context(), engine.ExchangeInput{
		AccountID:      accountID,
		FromCurrency:   req.FromCurrency,
		ToCurrency:     req.ToCurrency,
		Amount:         req.Amount,
		IdempotencyKey: req.IdempotencyKey,
		CorrelationID:  middleware.GetCorrelationID(c),
	})
	if err != nil {
		h.respondMovementError(c, err)
		return
	}

	RespondCreated(c, mapRecordToResponse(rec))
}

// Deposit credits an account in its own currency
func (h *TransactionHandler) Deposit(c *gin.Context) {
	h.adjust(c, h.transactionService.Deposit)
}

// Withdraw debits an account in its own currency
func (h *TransactionHandler) Withdraw(c *gin.Context) {
	h.adjust(c, h.transactionService.Withdraw)
}

func (h *TransactionHandler) adjust(c *gin.Context, op func(ctx context.Context, input engine.AdjustmentInput) (*record.TransactionRecord, error)) {
	var req AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	rec, err := op(c.Request.Context(), engine.AdjustmentInput{
		AccountID:      accountID,
		Amount:         req.Amount,
		IdempotencyKey: req.IdempotencyKey,
		CorrelationID:  middleware.GetCorrelationID(c),
	})
	if err != nil {
		h.respondMovementError(c, err)
		return
	}

	RespondCreated(c, mapRecordToResponse(rec))
}

// GetBalance returns a point-in-time balance snapshot for an account
func (h *TransactionHandler) GetBalance(c *gin.Context) {
	idParam := c.Param("id")
	accountID, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	balance, err := h.transactionService.GetBalance(c.Request.Context(), accountID)
	if err != nil {
		h.respondMovementError(c, err)
		return
	}

	RespondOK(c, BalanceResponse{
		AccountID: balance.AccountID.String(),
		Currency:  balance.Currency,
		Balance:   balance.Balance,
	})
}

// GetByID retrieves an archived transaction record, returns 404 if not found
func (h *TransactionHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid record ID")
		return
	}

	rec, err := h.transactionService.GetRecordByID(c.Request.Context(), id)
	if err != nil {
		var recNotFound record.ErrRecordNotFound
		if errors.As(err, &recNotFound) {
			RespondNotFound(c, "Transaction record not found")
			return
		}
		h.logger.Error("Failed to get transaction record", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapRecordToResponse(rec))
}

// GetByAccountID retrieves paginated transaction history for an account.
// History is served from the archive and trails the ledger by the outbox
// publishing delay.
func (h *TransactionHandler) GetByAccountID(c *gin.Context) {
	accountIDParam := c.Param("id")
	accountID, err := uuid.Parse(accountIDParam)
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	records, total, err := h.transactionService.GetRecordsByAccountID(
		c.Request.Context(),
		accountID,
		pagination.Page,
		pagination.PerPage,
	)
	if err != nil {
		h.logger.Error("Failed to get transaction records", "account_id", accountIDParam, "error", err)
		RespondInternalError(c)
		return
	}

	var responses []RecordResponse
	for _, rec := range records {
		responses = append(responses, mapRecordToResponse(rec))
	}

	RespondWithPaginatedData(c, http.StatusOK, responses, pagination.Page, pagination.PerPage, int(total))
}

// respondMovementError maps engine error kinds onto HTTP status codes
func (h *TransactionHandler) respondMovementError(c *gin.Context, err error) {
	var (
		accNotFound     account.ErrAccountNotFound
		itemNotFound    item.ErrItemNotFound
		unknownCurrency rates.ErrUnknownCurrency
		lockTimeout     ledgerstore.ErrLockTimeout
		unavailable     ledgerstore.ErrStoreUnavailable
	)

	switch {
	case errors.As(err, &accNotFound):
		RespondNotFound(c, "Account not found: "+accNotFound.AccountID.String())
	case errors.As(err, &itemNotFound):
		RespondNotFound(c, "Item not found")
	case errors.Is(err, account.ErrInsufficientFunds):
		RespondUnprocessable(c, "INSUFFICIENT_FUNDS", "Insufficient funds for this operation")
	case errors.Is(err, account.ErrInvalidAmount):
		RespondBadRequest(c, "Amount must be positive")
	case errors.Is(err, account.ErrAccountArchived):
		RespondConflict(c, "Account is archived")
	case errors.Is(err, item.ErrItemArchived):
		RespondConflict(c, "Item is archived")
	case errors.As(err, &unknownCurrency):
		RespondWithError(c, http.StatusBadRequest, "UNKNOWN_CURRENCY", "Unknown currency: "+unknownCurrency.Code)
	case errors.Is(err, rates.ErrInvalidConversion):
		RespondWithError(c, http.StatusBadRequest, "INVALID_CONVERSION", "From and to currency must differ")
	case errors.Is(err, ledgerstore.ErrSameAccount):
		RespondBadRequest(c, "Buyer and seller accounts must differ")
	case errors.As(err, &lockTimeout):
		h.logger.Warn("Lock timeout during movement", "account_id", lockTimeout.AccountID.String())
		RespondServiceUnavailable(c, "Account is busy, retry the operation")
	case errors.As(err, &unavailable):
		h.logger.Error("Ledger store unavailable", "error", err)
		RespondServiceUnavailable(c, "")
	default:
		h.logger.Error("Failed to execute movement", "error", err)
		RespondInternalError(c)
	}
}

// mapRecordToResponse maps a transaction record to a response DTO
func mapRecordToResponse(rec *record.TransactionRecord) RecordResponse {
	resp := RecordResponse{
		ID:              rec.ID.String(),
		AccountID:       rec.AccountID.String(),
		Kind:            string(rec.Kind),
		Amount:          rec.Amount,
		Currency:        rec.Currency,
		BaseAmount:      rec.BaseAmount,
		ConvertedAmount: rec.ConvertedAmount,
		ToCurrency:      rec.ToCurrency,
		Status:          string(rec.Status),
		FailureReason:   string(rec.FailureReason),
		CreatedAt:       rec.CreatedAt.Format(time.RFC3339),
	}
	if rec.CounterpartyAccountID != nil {
		resp.CounterpartyAccountID = rec.CounterpartyAccountID.String()
	}
	return resp
}
