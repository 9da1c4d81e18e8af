package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/digimonpay/wallet-ledger/internal/api_gateway/service"
	"github.com/digimonpay/wallet-ledger/internal/rates"
)

// ExchangeHandler handles HTTP requests for rate lookups, conversion
// previews, and rate table administration
type ExchangeHandler struct {
	exchangeService service.ExchangeService
	logger          *slog.Logger
}

// NewExchangeHandler creates a new exchange handler
func NewExchangeHandler(logger *slog.Logger, exchangeService service.ExchangeService) *ExchangeHandler {
	return &ExchangeHandler{
		exchangeService: exchangeService,
		logger:          logger,
	}
}

// Quote previews a currency conversion without moving funds
func (h *ExchangeHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		RespondBadRequest(c, "Invalid quote parameters: "+err.Error())
		return
	}

	conv, err := h.exchangeService.Quote(c.Request.Context(), req.FromCurrency, req.ToCurrency, req.Amount)
	if err != nil {
		var unknownCurrency rates.ErrUnknownCurrency
		switch {
		case errors.As(err, &unknownCurrency):
			RespondWithError(c, http.StatusBadRequest, "UNKNOWN_CURRENCY", "Unknown currency: "+unknownCurrency.Code)
		case errors.Is(err, rates.ErrInvalidConversion):
			RespondWithError(c, http.StatusBadRequest, "INVALID_CONVERSION", "From and to currency must differ")
		default:
			h.logger.Error("Failed to quote conversion", "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, QuoteResponse{
		FromCurrency: req.FromCurrency,
		ToCurrency:   req.ToCurrency,
		Amount:       req.Amount,
		BaseAmount:   conv.BaseAmount,
		Result:       conv.Amount,
	})
}

// GetRates returns the active rate table, base currency included
func (h *ExchangeHandler) GetRates(c *gin.Context) {
	entries := h.exchangeService.Rates()

	resp := RatesResponse{
		BaseCurrency: h.exchangeService.BaseCurrency(),
		Entries:      make([]RateEntry, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, RateEntry{
			Code:       e.Code,
			RateToBase: e.RateToBase.String(),
			MinorUnits: e.MinorUnits,
		})
	}

	RespondOK(c, resp)
}

// RefreshRates atomically replaces the non-base rate table
func (h *ExchangeHandler) RefreshRates(c *gin.Context) {
	var req RefreshRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	entries := make([]rates.Entry, 0, len(req.Entries))
	for _, e := range req.Entries {
		rate, err := decimal.NewFromString(e.RateToBase)
		if err != nil {
			RespondBadRequest(c, "Invalid rate for "+e.Code+": "+e.RateToBase)
			return
		}
		entries = append(entries, rates.Entry{
			Code:       e.Code,
			RateToBase: rate,
			MinorUnits: e.MinorUnits,
		})
	}

	if err := h.exchangeService.RefreshRates(c.Request.Context(), entries); err != nil {
		switch {
		case errors.Is(err, rates.ErrInvalidRate):
			RespondBadRequest(c, "Rates must be positive")
		default:
			h.logger.Error("Failed to refresh rates", "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondNoContent(c)
}
