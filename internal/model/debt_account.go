package model

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// DebtAccount holds at most one liability.
type DebtAccount struct {
	Base

	liability *Liability
}

// NewDebtAccount creates a debt account. More than one liability per account
// is not supported.
func NewDebtAccount(base Base, liabilities []Liability) (*DebtAccount, error) {
	if len(liabilities) > 1 {
		return nil, fmt.Errorf("%w: %d liabilities in one debt account", ErrUnsupportedConfiguration, len(liabilities))
	}
	d := &DebtAccount{Base: base}
	if len(liabilities) == 1 {
		l := liabilities[0]
		d.liability = &l
	}
	return d, nil
}

func (d *DebtAccount) account() {}

// Info returns the shared account fields.
func (d *DebtAccount) Info() *Base { return &d.Base }

// Kind returns KindDebt.
func (d *DebtAccount) Kind() Kind { return KindDebt }

// Liability returns the account's liability, if any.
func (d *DebtAccount) Liability() (Liability, bool) {
	if d.liability == nil {
		return Liability{}, false
	}
	return *d.liability, true
}

// MakePayment pays amount toward the liability and returns the remaining
// balance. When src is not nil the amount is taken out of its cash.
func (d *DebtAccount) MakePayment(amount decimal.Decimal, src *AssetAccount) (decimal.Decimal, error) {
	if d.liability == nil {
		return decimal.Zero, fmt.Errorf("payment to %s: %w", d.Institution, ErrNoLiability)
	}
	outstanding := d.liability.Outstanding()
	if !amount.IsPositive() {
		return outstanding, fmt.Errorf("payment to %s: %w", d.Institution, ErrInvalidAmount)
	}
	if amount.GreaterThan(outstanding) {
		return outstanding, fmt.Errorf("paying %s against %s: %w", amount, outstanding, ErrOverpayment)
	}
	if src != nil {
		if amount.GreaterThan(src.Cash()) {
			return outstanding, fmt.Errorf("paying %s from %s: %w", amount, src.Institution, ErrInsufficientFunds)
		}
		if _, err := src.TransferOut(amount); err != nil {
			return outstanding, err
		}
	}

	remaining := outstanding.Sub(amount)
	d.liability.Balance = decimal.NewNullDecimal(remaining)
	return remaining, nil
}

// Reconcile stores and returns the outstanding balance of the liability.
// No interest accrual or amortization is applied.
func (d *DebtAccount) Reconcile(_ context.Context, _ PriceLookup) (decimal.Decimal, error) {
	total := decimal.Zero
	if d.liability != nil {
		total = total.Add(d.liability.Outstanding())
	}
	d.total = total
	return d.total, nil
}
