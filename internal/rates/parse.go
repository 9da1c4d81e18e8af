package rates

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseEntries parses a configuration rate table of the form
// "USD:34.99:2,CNY:4.88:2,JPY:0.23:0" (code:rate_to_base:minor_units).
func ParseEntries(spec string) ([]Entry, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}

	var entries []Entry
	for _, part := range strings.Split(spec, ",") {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("invalid rate entry %q: want code:rate:minor_units", part)
		}

		code := strings.ToUpper(strings.TrimSpace(fields[0]))
		if len(code) != 3 {
			return nil, fmt.Errorf("invalid currency code %q", fields[0])
		}

		rate, err := decimal.NewFromString(fields[1])
		if err != nil {
			return nil, fmt.Errorf("invalid rate for %s: %w", code, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("rate for %s must be positive", code)
		}

		minor, err := strconv.ParseInt(fields[2], 10, 32)
		if err != nil || minor < 0 {
			return nil, fmt.Errorf("invalid minor units for %s: %q", code, fields[2])
		}

		entries = append(entries, Entry{
			Code:       code,
			RateToBase: rate,
			MinorUnits: int32(minor),
		})
	}
	return entries, nil
}
