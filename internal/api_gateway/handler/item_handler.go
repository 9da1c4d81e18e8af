package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/digimonpay/wallet-ledger/internal/api_gateway/service"
	"github.com/digimonpay/wallet-ledger/internal/domain/account"
	"github.com/digimonpay/wallet-ledger/internal/domain/item"
)

// ItemHandler handles HTTP requests for catalog item operations
type ItemHandler struct {
	itemService service.ItemService
	logger      *slog.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(logger *slog.Logger, itemService service.ItemService) *ItemHandler {
	return &ItemHandler{
		itemService: itemService,
		logger:      logger,
	}
}

// Create handles creation of a new catalog item
func (h *ItemHandler) Create(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	merchantAccountID, err := uuid.Parse(req.MerchantAccountID)
	if err != nil {
		RespondBadRequest(c, "Invalid merchant account ID")
		return
	}

	it, err := h.itemService.CreateItem(c.Request.Context(), merchantAccountID, req.Name, req.Description, req.Price, req.Currency)
	if err != nil {
		var accNotFound account.ErrAccountNotFound
		switch {
		case errors.As(err, &accNotFound):
			RespondNotFound(c, "Merchant account not found")
		case errors.Is(err, account.ErrAccountArchived):
			RespondConflict(c, "Merchant account is archived")
		case errors.Is(err, item.ErrEmptyName), errors.Is(err, item.ErrInvalidPrice), errors.Is(err, item.ErrInvalidCurrencyFormat):
			RespondBadRequest(c, err.Error())
		default:
			h.logger.Error("Failed to create item", "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, mapItemToResponse(it))
}

// GetByID retrieves a catalog item by its ID, returning 404 if not found
func (h *ItemHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid item ID")
		return
	}

	it, err := h.itemService.GetItemByID(c.Request.Context(), id)
	if err != nil {
		var itemNotFound item.ErrItemNotFound
		if errors.As(err, &itemNotFound) {
			RespondNotFound(c, "Item not found")
			return
		}
		h.logger.Error("Failed to get item", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapItemToResponse(it))
}

// GetByMerchant retrieves a merchant's catalog with pagination
func (h *ItemHandler) GetByMerchant(c *gin.Context) {
	merchantParam := c.Param("id")
	merchantAccountID, err := uuid.Parse(merchantParam)
	if err != nil {
		RespondBadRequest(c, "Invalid merchant account ID")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	items, err := h.itemService.GetItemsByMerchant(c.Request.Context(), merchantAccountID, pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to get items by merchant", "merchant_account_id", merchantParam, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		responses = append(responses, mapItemToResponse(it))
	}
	RespondOK(c, responses)
}

// Patch applies a partial update to a catalog item
func (h *ItemHandler) Patch(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid item ID")
		return
	}

	var req PatchItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	it, err := h.itemService.PatchItem(c.Request.Context(), id, item.Patch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Currency:    req.Currency,
	})
	if err != nil {
		var itemNotFound item.ErrItemNotFound
		switch {
		case errors.As(err, &itemNotFound):
			RespondNotFound(c, "Item not found")
		case errors.Is(err, item.ErrItemArchived):
			RespondConflict(c, "Item is archived")
		case errors.Is(err, item.ErrEmptyName), errors.Is(err, item.ErrInvalidPrice), errors.Is(err, item.ErrInvalidCurrencyFormat):
			RespondBadRequest(c, err.Error())
		default:
			h.logger.Error("Failed to patch item", "id", idParam, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, mapItemToResponse(it))
}

// Archive soft-deletes a catalog item so it can no longer be purchased
func (h *ItemHandler) Archive(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid item ID")
		return
	}

	if err := h.itemService.ArchiveItem(c.Request.Context(), id); err != nil {
		var itemNotFound item.ErrItemNotFound
		switch {
		case errors.As(err, &itemNotFound):
			RespondNotFound(c, "Item not found")
		case errors.Is(err, item.ErrItemArchived):
			RespondConflict(c, "Item is already archived")
		default:
			h.logger.Error("Failed to archive item", "id", idParam, "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondNoContent(c)
}

// mapItemToResponse maps an item entity to an item response DTO
func mapItemToResponse(it *item.Item) ItemResponse {
	resp := ItemResponse{
		ID:                it.ID.String(),
		MerchantAccountID: it.MerchantAccountID.String(),
		Name:              it.Name,
		Description:       it.Description,
		Price:             it.Price,
		Currency:          it.Currency,
		CreatedAt:         it.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         it.UpdatedAt.Format(time.RFC3339),
	}
	if it.ArchivedAt != nil {
		resp.ArchivedAt = it.ArchivedAt.Format(time.RFC3339)
	}
	return resp
}
