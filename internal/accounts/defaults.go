package accounts

import (
	"github.com/shopspring/decimal"

	"github.com/bettertrack/bettertrack/internal/model"
	"github.com/bettertrack/bettertrack/internal/portfolio"
)

// DefaultKind returns the side of net worth a new account of type t lands on
// when the user does not say.
func DefaultKind(t model.AccountType) model.Kind {
	switch t {
	case model.AccountTypeCreditCard:
		return model.KindDebt
	default:
		return model.KindAsset
	}
}

// DefaultLiabilityType returns the loan type suggested for a debt account of type t.
func DefaultLiabilityType(t model.AccountType) model.LiabilityType {
	switch t {
	case model.AccountTypeCreditCard:
		return model.LiabilityTypeCreditCard
	default:
		return model.LiabilityTypePersonal
	}
}

// NewAccount returns the entry for a new account. Debt accounts never carry cash.
func NewAccount(institution string, t model.AccountType, kind model.Kind, cash decimal.Decimal) portfolio.AccountConfig {
	isAsset := kind == model.KindAsset
	acct := portfolio.AccountConfig{
		ID:          portfolio.NewAccountID(),
		Institution: institution,
		Type:        t,
		IsAsset:     &isAsset,
	}
	if isAsset {
		acct.Cash = cash
	}
	return acct
}
