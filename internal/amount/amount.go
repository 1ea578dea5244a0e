// Package amount parses the GP amounts accepted by mutating ledger operations.
package amount

import (
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for input that is not a finite number strictly
// greater than zero once floored to an integer.
var ErrInvalidAmount = errors.New("invalid amount: must be a positive number")

var maxAmount = decimal.NewFromInt(math.MaxInt64)

// Parse converts v to a positive whole amount. Fractional values are floored,
// so "12.9" becomes 12 and "0.5" is rejected.
func Parse(v any) (int64, error) {
	var d decimal.Decimal
	switch x := v.(type) {
	case int:
		d = decimal.NewFromInt(int64(x))
	case int32:
		d = decimal.NewFromInt(int64(x))
	case int64:
		d = decimal.NewFromInt(x)
	case float32:
		return Parse(float64(x))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, ErrInvalidAmount
		}
		d = decimal.NewFromFloat(x)
	case json.Number:
		return Parse(string(x))
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return 0, ErrInvalidAmount
		}
		d = parsed
	default:
		return 0, ErrInvalidAmount
	}
	return fromDecimal(d)
}

func fromDecimal(d decimal.Decimal) (int64, error) {
	if !d.IsPositive() {
		return 0, ErrInvalidAmount
	}
	d = d.Floor()
	if !d.IsPositive() || d.GreaterThan(maxAmount) {
		return 0, ErrInvalidAmount
	}
	return d.IntPart(), nil
}
