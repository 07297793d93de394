package model

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// AssetAccount holds cash and security positions.
type AssetAccount struct {
	Base

	cash     decimal.Decimal
	holdings map[string]Asset
	order    []string // tickers in insertion order
}

// NewAssetAccount creates an asset account with the given cash balance.
func NewAssetAccount(base Base, cash decimal.Decimal) *AssetAccount {
	return &AssetAccount{
		Base:     base,
		cash:     cash,
		holdings: make(map[string]Asset),
	}
}

func (a *AssetAccount) account() {}

// Info returns the shared account fields.
func (a *AssetAccount) Info() *Base { return &a.Base }

// Kind returns KindAsset.
func (a *AssetAccount) Kind() Kind { return KindAsset }

// Cash returns the cash balance. It may be negative.
func (a *AssetAccount) Cash() decimal.Decimal { return a.cash }

// Holdings returns the positions in insertion order.
func (a *AssetAccount) Holdings() []Asset {
	out := make([]Asset, 0, len(a.order))
	for _, t := range a.order {
		out = append(out, a.holdings[t])
	}
	return out
}

// Holding returns the position in ticker.
func (a *AssetAccount) Holding(ticker string) (Asset, bool) {
	h, ok := a.holdings[NormalizeTicker(ticker)]
	return h, ok
}

// TransferIn adds amt to the cash balance and returns the new balance.
func (a *AssetAccount) TransferIn(amt decimal.Decimal) (decimal.Decimal, error) {
	if !amt.IsPositive() {
		return a.cash, fmt.Errorf("transfer in %s: %w", amt, ErrInvalidAmount)
	}
	a.cash = a.cash.Add(amt)
	return a.cash, nil
}

// TransferOut removes amt from the cash balance and returns the new balance.
// The balance is allowed to go negative.
func (a *AssetAccount) TransferOut(amt decimal.Decimal) (decimal.Decimal, error) {
	if !amt.IsPositive() {
		return a.cash, fmt.Errorf("transfer out %s: %w", amt, ErrInvalidAmount)
	}
	a.cash = a.cash.Sub(amt)
	return a.cash, nil
}

// AddHolding inserts asset, merging it into an existing position with the
// same ticker. Cash is not touched.
func (a *AssetAccount) AddHolding(asset Asset) error {
	asset.Ticker = NormalizeTicker(asset.Ticker)
	existing, ok := a.holdings[asset.Ticker]
	if !ok {
		a.holdings[asset.Ticker] = asset
		a.order = append(a.order, asset.Ticker)
		return nil
	}
	merged, err := existing.Merge(asset)
	if err != nil {
		return err
	}
	a.holdings[asset.Ticker] = merged
	return nil
}

// RemoveHolding drops the position in ticker and returns it.
func (a *AssetAccount) RemoveHolding(ticker string) (Asset, error) {
	ticker = NormalizeTicker(ticker)
	h, ok := a.holdings[ticker]
	if !ok {
		return Asset{}, fmt.Errorf("%w: %s", ErrHoldingNotFound, ticker)
	}
	delete(a.holdings, ticker)
	for i, t := range a.order {
		if t == ticker {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	return h, nil
}

// Buy spends amount of cash on asset at its current price and returns the
// remaining cash. The cost basis is set to the fetched price and the share
// count to amount / price. On any error the account is left unchanged.
func (a *AssetAccount) Buy(ctx context.Context, amount decimal.Decimal, asset Asset, prices PriceLookup) (decimal.Decimal, error) {
	asset.Ticker = NormalizeTicker(asset.Ticker)
	if !amount.IsPositive() {
		return a.cash, fmt.Errorf("buy %s: %w", asset.Ticker, ErrInvalidAmount)
	}
	if amount.GreaterThan(a.cash) {
		return a.cash, fmt.Errorf("buy %s for %s with %s cash: %w", asset.Ticker, amount, a.cash, ErrInsufficientFunds)
	}

	price, err := prices.Price(ctx, asset.Ticker)
	if err != nil {
		return a.cash, fmt.Errorf("pricing %s: %w", asset.Ticker, err)
	}
	if !price.IsPositive() {
		return a.cash, fmt.Errorf("pricing %s: non-positive price %s", asset.Ticker, price)
	}

	asset.CostBasis = decimal.NewNullDecimal(price)
	asset.Shares = amount.Div(price)

	if err := a.AddHolding(asset); err != nil {
		return a.cash, fmt.Errorf("buy %s: %w", asset.Ticker, err)
	}
	a.cash = a.cash.Sub(amount)
	return a.cash, nil
}

// Sell sells shares of ticker at the current price, credits the proceeds to
// cash and returns them. The per-share cost basis of what remains is
// unchanged; a position sold down to zero is removed.
func (a *AssetAccount) Sell(ctx context.Context, ticker string, shares decimal.Decimal, prices PriceLookup) (decimal.Decimal, error) {
	ticker = NormalizeTicker(ticker)
	if !shares.IsPositive() {
		return decimal.Zero, fmt.Errorf("sell %s: %w", ticker, ErrInvalidAmount)
	}
	h, ok := a.holdings[ticker]
	if !ok {
		return decimal.Zero, fmt.Errorf("sell: %w: %s", ErrHoldingNotFound, ticker)
	}
	if shares.GreaterThan(h.Shares) {
		return decimal.Zero, fmt.Errorf("sell %s shares of %s holding %s: %w", shares, ticker, h.Shares, ErrInsufficientShares)
	}

	price, err := prices.Price(ctx, ticker)
	if err != nil {
		return decimal.Zero, fmt.Errorf("pricing %s: %w", ticker, err)
	}

	proceeds := shares.Mul(price)
	h.Shares = h.Shares.Sub(shares)
	if h.Shares.IsZero() {
		if _, err := a.RemoveHolding(ticker); err != nil {
			return decimal.Zero, err
		}
	} else {
		a.holdings[ticker] = h
	}
	a.cash = a.cash.Add(proceeds)
	return proceeds, nil
}

// Dividend credits a cash dividend paid by ticker and returns the new cash balance.
func (a *AssetAccount) Dividend(ticker string, amount decimal.Decimal) (decimal.Decimal, error) {
	ticker = NormalizeTicker(ticker)
	if _, ok := a.holdings[ticker]; !ok {
		return a.cash, fmt.Errorf("dividend: %w: %s", ErrHoldingNotFound, ticker)
	}
	if !amount.IsPositive() {
		return a.cash, fmt.Errorf("dividend from %s: %w", ticker, ErrInvalidAmount)
	}
	a.cash = a.cash.Add(amount)
	return a.cash, nil
}

// Interest credits interest earned on the cash balance and returns the new balance.
func (a *AssetAccount) Interest(amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return a.cash, fmt.Errorf("interest: %w", ErrInvalidAmount)
	}
	a.cash = a.cash.Add(amount)
	return a.cash, nil
}

// Reconcile marks every position to market, one lookup per ticker, and
// stores cash plus market value as the account total. A lookup failure is
// returned as is and the previous total is kept.
func (a *AssetAccount) Reconcile(ctx context.Context, prices PriceLookup) (decimal.Decimal, error) {
	total := a.cash
	for _, t := range a.order {
		h := a.holdings[t]
		price, err := prices.Price(ctx, t)
		if err != nil {
			return a.total, fmt.Errorf("reconciling %s: pricing %s: %w", a.Institution, t, err)
		}
		total = total.Add(h.MarketValue(price))
	}
	a.total = total
	return a.total, nil
}
