// Package render formats portfolio data as markdown and prints it through a
// terminal markdown renderer.
package render

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is the currency every amount is displayed in.
const Currency = money.USD

// Money formats amount as currency, e.g. "$1,234.56" or "-$20.00".
// Amounts are rounded half away from zero to the currency's minor unit.
func Money(amount decimal.Decimal) string {
	cur := money.GetCurrency(Currency)
	factor := decimal.New(1, int32(cur.Fraction))
	minor := amount.Mul(factor).Round(0).IntPart()

	m := money.New(minor, Currency)
	if m.IsNegative() {
		return "-" + m.Absolute().Display()
	}
	return m.Display()
}

// Optional formats a nullable amount, "-" when unknown.
func Optional(amount decimal.NullDecimal) string {
	if !amount.Valid {
		return "-"
	}
	return Money(amount.Decimal)
}

// Quantity formats a share count without trailing zeros.
func Quantity(q decimal.Decimal) string {
	return q.Round(6).String()
}

// Percent formats a percentage such as an APR or yield.
func Percent(p decimal.Decimal) string {
	return p.String() + "%"
}
