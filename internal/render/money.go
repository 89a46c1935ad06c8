package render

import (
	"github.com/shopspring/decimal"
)

// DateLayout is how invoice dates are shown to people
const DateLayout = "02 Jan 2006"

// FormatMoney renders an amount with two decimals behind the currency
// symbol, keeping the sign in front: -₹274.00
func FormatMoney(symbol string, amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-" + symbol + amount.Neg().StringFixed(2)
	}
	return symbol + amount.StringFixed(2)
}
