package shared

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// QuantityScale is the number of fractional digits stored for quantities and
// prices. Columns are DECIMAL(18,4).
const QuantityScale = 4

var quantityLimit = decimal.New(1, 18-QuantityScale)

// CheckScale rejects values the store would round or overflow. Trailing zeros
// beyond the scale are fine, 1.50000 is accepted.
func CheckScale(code, field string, v decimal.Decimal) error {
	if !v.Equal(v.Truncate(QuantityScale)) {
		return NewDomainError(code, field+" allows at most "+strconv.Itoa(QuantityScale)+" decimal places")
	}
	if v.Abs().GreaterThanOrEqual(quantityLimit) {
		return NewDomainError(code, field+" is too large")
	}
	return nil
}
