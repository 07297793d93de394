package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bettertrack/bettertrack/internal/model"
)

const (
	numFields       = 7
	colTicker       = 0
	colName         = 1
	colType         = 2
	colShares       = 3
	colCostBasis    = 4
	colYield        = 5
	colExpenseRatio = 6
)

var holdingsHeader = []string{"ticker", "name", "type", "shares", "cost_basis", "yield", "expense_ratio"}

// ReadHoldings reads a holdings CSV. The first row is the header.
func ReadHoldings(r io.Reader) ([]model.Asset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading holdings CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var assets []model.Asset
	for i, rec := range records[1:] {
		a, err := UnmarshalHolding(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		assets = append(assets, a)
	}
	return assets, nil
}

// WriteHoldings writes assets as a holdings CSV.
func WriteHoldings(w io.Writer, assets []model.Asset) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(holdingsHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, a := range assets {
		if err := cw.Write(MarshalHolding(a)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalHolding converts an Asset to a CSV row. Unknown cost basis and
// yield are written as empty cells.
func MarshalHolding(a model.Asset) []string {
	row := make([]string, numFields)
	row[colTicker] = a.Ticker
	row[colName] = a.Name
	row[colType] = string(a.Type)
	row[colShares] = a.Shares.String()
	if a.CostBasis.Valid {
		row[colCostBasis] = a.CostBasis.Decimal.String()
	}
	if a.Yield.Valid {
		row[colYield] = a.Yield.Decimal.String()
	}
	row[colExpenseRatio] = a.ExpenseRatio.String()
	return row
}

// UnmarshalHolding converts a CSV row to an Asset.
func UnmarshalHolding(record []string) (model.Asset, error) {
	if len(record) != numFields {
		return model.Asset{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ticker := model.NormalizeTicker(record[colTicker])
	if ticker == "" {
		return model.Asset{}, fmt.Errorf("ticker is required")
	}

	typ, err := model.ParseAssetType(strings.TrimSpace(record[colType]))
	if err != nil {
		return model.Asset{}, err
	}

	shares, err := decimal.NewFromString(strings.TrimSpace(record[colShares]))
	if err != nil {
		return model.Asset{}, fmt.Errorf("parsing shares %q: %w", record[colShares], err)
	}
	if shares.IsNegative() {
		return model.Asset{}, fmt.Errorf("shares %s: %w", shares, model.ErrInvalidAmount)
	}

	costBasis, err := parseOptional(record[colCostBasis])
	if err != nil {
		return model.Asset{}, fmt.Errorf("parsing cost_basis %q: %w", record[colCostBasis], err)
	}
	if costBasis.Valid && costBasis.Decimal.IsNegative() {
		return model.Asset{}, fmt.Errorf("cost_basis %s: %w", costBasis.Decimal, model.ErrInvalidAmount)
	}

	yield, err := parseOptional(record[colYield])
	if err != nil {
		return model.Asset{}, fmt.Errorf("parsing yield %q: %w", record[colYield], err)
	}

	var expense decimal.Decimal
	if s := strings.TrimSpace(record[colExpenseRatio]); s != "" {
		expense, err = decimal.NewFromString(s)
		if err != nil {
			return model.Asset{}, fmt.Errorf("parsing expense_ratio %q: %w", s, err)
		}
	}

	name := strings.TrimSpace(record[colName])
	if name == "" {
		name = ticker
	}

	return model.Asset{
		Type:         typ,
		Name:         name,
		Ticker:       ticker,
		Shares:       shares,
		CostBasis:    costBasis,
		Yield:        yield,
		ExpenseRatio: expense,
	}, nil
}

func parseOptional(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
