package service

import (
	"context"
	"log/slog"

	"github.com/digimonpay/wallet-ledger/internal/rates"
)

// ExchangeServiceImpl implements the ExchangeService interface
type ExchangeServiceImpl struct {
	rates  *rates.Table
	logger *slog.Logger
}

// NewExchangeService creates a new exchange service
func NewExchangeService(logger *slog.Logger, table *rates.Table) ExchangeService {
	return &ExchangeServiceImpl{
		rates:  table,
		logger: logger,
	}
}

// Quote previews a conversion without moving funds
func (s *ExchangeServiceImpl) Quote(ctx context.Context, fromCurrency, toCurrency string, amount int64) (rates.Conversion, error) {
	return s.rates.Convert(amount, fromCurrency, toCurrency)
}

// BaseCurrency returns the code all rates are quoted against
func (s *ExchangeServiceImpl) BaseCurrency() string {
	return s.rates.BaseCurrency()
}

// Rates returns a snapshot of the active rate table
func (s *ExchangeServiceImpl) Rates() []rates.Entry {
	return s.rates.Entries()
}

// RefreshRates atomically replaces the non-base rate table. In-flight
// conversions keep the rates they already read.
func (s *ExchangeServiceImpl) RefreshRates(ctx context.Context, entries []rates.Entry) error {
	if err := s.rates.Refresh(entries); err != nil {
		return err
	}
	s.logger.Info("Rate table refreshed", "entries", len(entries))
	return nil
}
