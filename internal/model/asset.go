package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AssetType classifies a security holding.
type AssetType string

const (
	AssetTypeStocks      AssetType = "stocks"
	AssetTypeBonds       AssetType = "bonds"
	AssetTypeMoneyMarket AssetType = "money-market"
	AssetTypeCD          AssetType = "cd"
	AssetTypeCash        AssetType = "cash"
	AssetTypeRealEstate  AssetType = "real-estate"
	AssetTypeCrypto      AssetType = "crypto-currency"
	AssetTypeCommodity   AssetType = "commodity"
)

// AssetTypes lists every supported asset type.
var AssetTypes = []AssetType{
	AssetTypeStocks,
	AssetTypeBonds,
	AssetTypeMoneyMarket,
	AssetTypeCD,
	AssetTypeCash,
	AssetTypeRealEstate,
	AssetTypeCrypto,
	AssetTypeCommodity,
}

// Valid reports whether t is a known asset type.
func (t AssetType) Valid() bool {
	for _, v := range AssetTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ParseAssetType converts s to an AssetType.
func ParseAssetType(s string) (AssetType, error) {
	t := AssetType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown asset type %q", s)
	}
	return t, nil
}

// NormalizeTicker returns the canonical form of a ticker symbol: trimmed
// and upper-cased. Holdings and cached prices are keyed by it.
func NormalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Asset is a position in one security, keyed by ticker.
type Asset struct {
	Type         AssetType
	Name         string
	Ticker       string
	Shares       decimal.Decimal
	CostBasis    decimal.NullDecimal // per share; null until priced
	Yield        decimal.NullDecimal
	ExpenseRatio decimal.Decimal
}

// Equal reports whether a and b are positions in the same security.
func (a Asset) Equal(b Asset) bool {
	return NormalizeTicker(a.Ticker) == NormalizeTicker(b.Ticker)
}

// Merge combines two positions in the same security. Shares add up and the
// cost basis becomes the share-weighted average of both. Merging into a
// position with no shares yields b unchanged. The result has a null cost
// basis when either side's cost basis is unknown.
func (a Asset) Merge(b Asset) (Asset, error) {
	if NormalizeTicker(a.Ticker) != NormalizeTicker(b.Ticker) {
		return Asset{}, fmt.Errorf("%w: cannot merge %s into %s", ErrTickerMismatch, b.Ticker, a.Ticker)
	}
	if a.Shares.IsZero() {
		return b, nil
	}

	merged := a
	total := a.Shares.Add(b.Shares)
	merged.Shares = total

	if !a.CostBasis.Valid || !b.CostBasis.Valid || total.IsZero() {
		merged.CostBasis = decimal.NullDecimal{}
		return merged, nil
	}
	cost := a.Shares.Mul(a.CostBasis.Decimal).Add(b.Shares.Mul(b.CostBasis.Decimal))
	merged.CostBasis = decimal.NewNullDecimal(cost.Div(total))
	return merged, nil
}

// MarketValue returns the value of the position at price.
func (a Asset) MarketValue(price decimal.Decimal) decimal.Decimal {
	return a.Shares.Mul(price)
}
