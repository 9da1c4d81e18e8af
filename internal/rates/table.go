// Package rates holds the process-wide currency rate table and performs all
// conversion math. Balances and amounts cross package boundaries as int64
// minor units; inside a conversion they become exact decimals so that no
// floating-point drift can accumulate. Rounding happens exactly once, at
// the final result, using round-half-to-even.
package rates

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrInvalidConversion = errors.New("from and to currency are the same")
	ErrInvalidRate       = errors.New("rate to base must be positive")
)

// ErrUnknownCurrency indicates a currency absent from the rate table
type ErrUnknownCurrency struct {
	Code string
}

func (e ErrUnknownCurrency) Error() string {
	return "unknown currency: " + e.Code
}

// Is matches any ErrUnknownCurrency when the target carries an empty code
func (e ErrUnknownCurrency) Is(target error) bool {
	t, ok := target.(ErrUnknownCurrency)
	if !ok {
		return false
	}
	if t.Code == "" {
		return true
	}
	return e.Code == t.Code
}

// Entry is one currency's quotation against the base currency. RateToBase
// is how many base-currency units one unit of this currency is worth.
type Entry struct {
	Code       string          `json:"code"`
	RateToBase decimal.Decimal `json:"rate_to_base"`
	MinorUnits int32           `json:"minor_units"` // Decimal places of the minor unit
}

// Conversion is the outcome of converting an amount between two currencies
type Conversion struct {
	Amount     int64 // Converted amount, minor units of the target currency
	BaseAmount int64 // Base-currency equivalent, minor units of the base currency
}

// Table maps currency codes to their rate against a fixed base currency.
// Reads are concurrent; Refresh atomically swaps the whole set. The base
// currency always rates 1 and cannot be removed.
type Table struct {
	mu      sync.RWMutex
	base    Entry
	entries map[string]Entry
}

// NewTable creates a rate table quoted against the given base entry.
// The base entry's RateToBase is forced to 1.
func NewTable(base Entry, entries []Entry) (*Table, error) {
	base.RateToBase = decimal.NewFromInt(1)
	t := &Table{
		base:    base,
		entries: make(map[string]Entry),
	}
	if err := t.Refresh(entries); err != nil {
		return nil, err
	}
	return t, nil
}

// BaseCurrency returns the code all rates are quoted against
func (t *Table) BaseCurrency() string {
	return t.base.Code
}

// Refresh replaces every non-base entry with the given snapshot. In-flight
// conversions keep the rates they already read; new calls see the new set.
func (t *Table) Refresh(entries []Entry) error {
	next := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if e.Code == t.base.Code {
			continue // Base currency is implicit
		}
		if !e.RateToBase.IsPositive() {
			return ErrInvalidRate
		}
		if e.MinorUnits < 0 {
			return ErrInvalidRate
		}
		next[e.Code] = e
	}

	t.mu.Lock()
	t.entries = next
	t.mu.Unlock()
	return nil
}

// Entries returns a snapshot of all known entries, base currency included
func (t *Table) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Entry, 0, len(t.entries)+1)
	out = append(out, t.base)
	for _, e := range t.entries {
		out = append(out, e)
	}
	return out
}

// Rate returns the rate to base for the given currency code
func (t *Table) Rate(code string) (decimal.Decimal, error) {
	e, err := t.entry(code)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return e.RateToBase, nil
}

// MinorUnits returns the minor-unit precision of the given currency
func (t *Table) MinorUnits(code string) (int32, error) {
	e, err := t.entry(code)
	if err != nil {
		return 0, err
	}
	return e.MinorUnits, nil
}

// Convert converts amount (minor units of from) into to. There is a single
// code path through the base currency: base = amount * rate(from), result =
// base / rate(to). Converting a currency to itself is rejected.
func (t *Table) Convert(amount int64, from, to string) (Conversion, error) {
	if from == to {
		return Conversion{}, ErrInvalidConversion
	}

	fromEntry, err := t.entry(from)
	if err != nil {
		return Conversion{}, err
	}
	toEntry, err := t.entry(to)
	if err != nil {
		return Conversion{}, err
	}

	src := decimal.New(amount, -fromEntry.MinorUnits)
	base := src.Mul(fromEntry.RateToBase)
	result := base.Div(toEntry.RateToBase).RoundBank(toEntry.MinorUnits)

	return Conversion{
		Amount:     result.Shift(toEntry.MinorUnits).IntPart(),
		BaseAmount: base.RoundBank(t.base.MinorUnits).Shift(t.base.MinorUnits).IntPart(),
	}, nil
}

// BaseEquivalent expresses amount (minor units of code) in minor units of
// the base currency, rounded half-to-even
func (t *Table) BaseEquivalent(amount int64, code string) (int64, error) {
	e, err := t.entry(code)
	if err != nil {
		return 0, err
	}
	if code == t.base.Code {
		return amount, nil
	}

	base := decimal.New(amount, -e.MinorUnits).Mul(e.RateToBase)
	return base.RoundBank(t.base.MinorUnits).Shift(t.base.MinorUnits).IntPart(), nil
}

func (t *Table) entry(code string) (Entry, error) {
	if code == t.base.Code {
		return t.base, nil
	}

	t.mu.RLock()
	e, ok := t.entries[code]
	t.mu.RUnlock()
	if !ok {
		return Entry{}, ErrUnknownCurrency{Code: code}
	}
	return e, nil
}
