// Package networth reconciles accounts and sums them into net worth.
package networth

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bettertrack/bettertrack/internal/logger"
	"github.com/bettertrack/bettertrack/internal/model"
	"github.com/bettertrack/bettertrack/internal/portfolio"
)

// Line is one account's contribution to net worth.
type Line struct {
	Account model.Account
	Total   decimal.Decimal // as reconciled, always >= 0 for debts
	Signed  decimal.Decimal // +Total for assets, -Total for debts
}

// Breakdown is a reconciled portfolio.
type Breakdown struct {
	Lines    []Line
	Assets   decimal.Decimal
	Debts    decimal.Decimal
	NetWorth decimal.Decimal
}

// Calculator computes net worth over a fixed set of accounts.
type Calculator struct {
	accounts []model.Account
	prices   model.PriceLookup
}

// NewCalculator returns a calculator over accounts using prices to mark
// holdings to market.
func NewCalculator(accounts []model.Account, prices model.PriceLookup) *Calculator {
	return &Calculator{accounts: accounts, prices: prices}
}

// Calculate reconciles every account and returns net worth.
func (c *Calculator) Calculate(ctx context.Context) (decimal.Decimal, error) {
	b, err := c.Breakdown(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return b.NetWorth, nil
}

// Breakdown reconciles every account in stored order. Asset totals add to
// net worth and debt totals subtract from it. The first reconcile failure
// aborts the calculation.
func (c *Calculator) Breakdown(ctx context.Context) (*Breakdown, error) {
	b := &Breakdown{Lines: make([]Line, 0, len(c.accounts))}

	for _, acct := range c.accounts {
		total, err := acct.Reconcile(ctx, c.prices)
		if err != nil {
			return nil, err
		}

		line := Line{Account: acct, Total: total}
		switch acct.(type) {
		case *model.AssetAccount:
			line.Signed = total
			b.Assets = b.Assets.Add(total)
		case *model.DebtAccount:
			line.Signed = total.Neg()
			b.Debts = b.Debts.Add(total)
		default:
			return nil, fmt.Errorf("account %s: unhandled account kind %T", acct.Info().Institution, acct)
		}
		b.Lines = append(b.Lines, line)
		logger.Get().Debugw("account reconciled",
			"institution", acct.Info().Institution, "kind", acct.Kind(), "total", total)
	}

	b.NetWorth = b.Assets.Sub(b.Debts)
	return b, nil
}

// Compute builds the accounts of cfg and returns its net worth.
func Compute(ctx context.Context, cfg *portfolio.PortfolioConfig, prices model.PriceLookup) (decimal.Decimal, error) {
	accounts, err := cfg.BuildAccounts()
	if err != nil {
		return decimal.Zero, err
	}
	return NewCalculator(accounts, prices).Calculate(ctx)
}
