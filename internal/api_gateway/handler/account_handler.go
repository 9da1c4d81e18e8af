package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/digimonpay/wallet-ledger/internal/api_gateway/service"
	"github.com/digimonpay/wallet-ledger/internal/domain/account"
)

// AccountHandler handles HTTP requests for wallet account operations
type AccountHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountService service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// Create handles creation of a new wallet account
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		RespondBadRequest(c, "Invalid owner ID")
		return
	}

	acc, err := h.accountService.CreateAccount(c.Request.Context(), ownerID, req.Currency, req.InitialBalance)
	if err != nil {
		if errors.Is(err, account.ErrInvalidAmount) || errors.Is(err, account.ErrInvalidCurrencyFormat) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create account", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapAccountToResponse(acc))
}

// GetByID retrieves an account by its ID, returning 404 if not found
func (h *AccountHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid account ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	acc, err := h.accountService.GetAccountByID(c.Request.Context(), id)
	if err != nil {
		var accNotFound account.ErrAccountNotFound
		if errors.As(err, &accNotFound) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to get account", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// GetByOwnerID retrieves all wallets belonging to an owner
func (h *AccountHandler) GetByOwnerID(c *gin.Context) {
	ownerIDParam := c.Param("owner_id")
	ownerID, err := uuid.Parse(ownerIDParam)
	if err != nil {
		RespondBadRequest(c, "Invalid owner ID")
		return
	}

	accounts, err := h.accountService.GetAccountsByOwnerID(c.Request.Context(), ownerID)
	if err != nil {
		h.logger.Error("Failed to get accounts by owner", "owner_id", ownerIDParam, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]AccountResponse, 0, len(accounts))
	for _, acc := range accounts {
		responses = append(responses, mapAccountToResponse(acc))
	}
	RespondOK(c, responses)
}

// Patch applies a partial update to an account
func (h *AccountHandler) Patch(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	var req PatchAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	var patch account.Patch
	if req.OwnerID != nil {
		ownerID, err := uuid.Parse(*req.OwnerID)
		if err != nil {
			RespondBadRequest(c, "Invalid owner ID")
			return
		}
		patch.OwnerID = &ownerID
	}
	patch.Currency = req.Currency

	acc, err := h.accountService.PatchAccount(c.Request.Context(), id, patch)
	if err != nil {
		var accNotFound account.ErrAccountNotFound
		switch {
		case errors.As(err, &accNotFound):
			RespondNotFound(c, "Account not found")
		case errors.Is(err, account.ErrAccountArchived):
			RespondConflict(c, "Account is archived")
		case errors.Is(err, account.ErrInvalidCurrencyFormat):
			RespondBadRequest(c, err.Error())
		case errors.Is(err, account.ErrConcurrentModification{}):
			RespondConflict(c, "Account was modified concurrently, retry the update")
		default:
			h.logger.Error("Failed to patch account", "id", idParam, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// Archive soft-deletes an account. History remains readable; all balance
// movements are rejected afterwards.
func (h *AccountHandler) Archive(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	if err := h.accountService.ArchiveAccount(c.Request.Context(), id); err != nil {
		var accNotFound account.ErrAccountNotFound
		switch {
		case errors.As(err, &accNotFound):
			RespondNotFound(c, "Account not found")
		case errors.Is(err, account.ErrAccountArchived):
			RespondConflict(c, "Account is already archived")
		default:
			h.logger.Error("Failed to archive account", "id", idParam, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondNoContent(c)
}

// mapAccountToResponse maps an account entity to an account response DTO
func mapAccountToResponse(acc *account.Account) AccountResponse {
	resp := AccountResponse{
		ID:        acc.ID.String(),
		OwnerID:   acc.OwnerID.String(),
		Currency:  acc.Currency,
		Balance:   acc.Balance,
		CreatedAt: acc.CreatedAt.Format(time.RFC3339),
		UpdatedAt: acc.UpdatedAt.Format(time.RFC3339),
	}
	if acc.ArchivedAt != nil {
		resp.ArchivedAt = acc.ArchivedAt.Format(time.RFC3339)
	}
	return resp
}
