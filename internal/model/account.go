package model

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// AccountType classifies accounts by the kind of institution holding them.
type AccountType string

const (
	AccountTypeBank        AccountType = "bank"
	AccountTypeCreditUnion AccountType = "credit-union"
	AccountTypeBrokerage   AccountType = "brokerage"
	AccountTypeCreditCard  AccountType = "credit-card"
)

// AccountTypes lists every supported account type.
var AccountTypes = []AccountType{
	AccountTypeBank,
	AccountTypeCreditUnion,
	AccountTypeBrokerage,
	AccountTypeCreditCard,
}

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeBank, AccountTypeCreditUnion, AccountTypeBrokerage, AccountTypeCreditCard:
		return true
	}
	return false
}

// IsBank reports whether accounts of this type can act as a connected bank.
func (t AccountType) IsBank() bool {
	return t == AccountTypeBank || t == AccountTypeCreditUnion
}

// ParseAccountType converts s to an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown account type %q", s)
	}
	return t, nil
}

// Kind says which side of net worth an account contributes to.
type Kind string

const (
	KindAsset Kind = "asset"
	KindDebt  Kind = "debt"
)

// Account is implemented by *AssetAccount and *DebtAccount only.
type Account interface {
	Info() *Base
	Kind() Kind
	// Reconcile recomputes, stores and returns the account total.
	Reconcile(ctx context.Context, prices PriceLookup) (decimal.Decimal, error)

	account()
}

// Base carries the fields shared by every account.
type Base struct {
	ID            string
	Institution   string
	Type          AccountType
	ConnectedBank Account // not owned; may be nil

	total decimal.Decimal
}

// TotalAmount returns the total computed by the last Reconcile.
// It is zero until the account has been reconciled.
func (b *Base) TotalAmount() decimal.Decimal {
	return b.total
}

// ConnectBank links a bank account to this one.
func (b *Base) ConnectBank(bank Account) error {
	if bank == nil {
		b.ConnectedBank = nil
		return nil
	}
	if !bank.Info().Type.IsBank() {
		return fmt.Errorf("%w: %s account cannot be a connected bank", ErrUnsupportedConfiguration, bank.Info().Type)
	}
	b.ConnectedBank = bank
	return nil
}
