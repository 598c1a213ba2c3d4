package queue

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is stored as integer centavos; the API boundary speaks decimal
// strings ("150.00"). Conversions live here so rounding is done exactly once.

// ParseAmount converts a decimal amount string into centavos.
func ParseAmount(value string) (int64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid amount %q", ErrInvalidInput, value)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}
	centavos := d.Mul(decimal.NewFromInt(100))
	if !centavos.IsInteger() {
		return 0, fmt.Errorf("%w: amount %q has sub-centavo precision", ErrInvalidInput, value)
	}
	return centavos.IntPart(), nil
}

// FormatCentavos renders centavos as a two-decimal amount string.
func FormatCentavos(centavos int64) string {
	return decimal.New(centavos, -2).StringFixed(2)
}
