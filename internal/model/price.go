package model

import (
	"context"

	"github.com/shopspring/decimal"
)

// PriceLookup returns the current price of one unit of ticker.
type PriceLookup interface {
	Price(ctx context.Context, ticker string) (decimal.Decimal, error)
}

// PriceFunc adapts a function to PriceLookup.
type PriceFunc func(ctx context.Context, ticker string) (decimal.Decimal, error)

// Price calls f.
func (f PriceFunc) Price(ctx context.Context, ticker string) (decimal.Decimal, error) {
	return f(ctx, ticker)
}
