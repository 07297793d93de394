// Package portfolio reads, validates and writes the portfolio file and turns
// it into domain accounts.
package portfolio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bettertrack/bettertrack/internal/model"
)

// PortfolioConfig is the persisted portfolio document.
type PortfolioConfig struct {
	Name        string          `json:"name" validate:"required"`
	Owner       string          `json:"owner" validate:"required"`
	Accounts    []AccountConfig `json:"accounts" validate:"dive"`
	CreatedAt   Timestamp       `json:"created_at"`
	LastUpdated *Timestamp      `json:"last_updated"`
}

// AccountConfig is one account entry.
type AccountConfig struct {
	ID            string            `json:"id,omitempty"`
	Institution   string            `json:"institution" validate:"required"`
	Type          model.AccountType `json:"acc_type" validate:"account_type"`
	IsAsset       *bool             `json:"is_asset,omitempty"`
	Cash          decimal.Decimal   `json:"cash"`
	ConnectedBank string            `json:"connected_bank,omitempty"`
	Holdings      []HoldingConfig   `json:"acc_holdings" validate:"dive"`
}

// HoldingConfig is a holding entry: exactly one of Asset or Debt is set.
type HoldingConfig struct {
	Asset *AssetConfig
	Debt  *DebtConfig
}

// AssetConfig describes a security position.
type AssetConfig struct {
	Type         model.AssetType  `json:"type_" validate:"asset_type"`
	Name         string           `json:"name" validate:"required"`
	Ticker       string           `json:"ticker" validate:"required"`
	Shares       decimal.Decimal  `json:"shares" validate:"gte=0"`
	CostBasis    *decimal.Decimal `json:"cost_basis" validate:"omitempty,gte=0"`
	Yield        *decimal.Decimal `json:"yield_"`
	ExpenseRatio decimal.Decimal  `json:"expense_ratio" validate:"gte=0"`
}

// DebtConfig describes a loan.
type DebtConfig struct {
	Type              model.LiabilityType `json:"type_" validate:"liability_type"`
	Name              string              `json:"name" validate:"required"`
	APR               decimal.Decimal     `json:"apr" validate:"gte=0"`
	OriginalPrincipal decimal.Decimal     `json:"og_principal" validate:"gte=0"`
	Tenure            int                 `json:"tenure" validate:"gte=0"`
	Balance           *decimal.Decimal    `json:"balance,omitempty" validate:"omitempty,gte=0"`
}

// New returns an empty portfolio created now.
func New(name, owner string) *PortfolioConfig {
	return &PortfolioConfig{
		Name:      name,
		Owner:     owner,
		Accounts:  []AccountConfig{},
		CreatedAt: NewTimestamp(time.Now().Truncate(time.Second)),
	}
}

// NewAccountID returns a fresh account identifier.
func NewAccountID() string {
	return uuid.NewString()
}

// EnsureIDs assigns an identifier to every account that lacks one and
// reports whether any was assigned.
func (p *PortfolioConfig) EnsureIDs() bool {
	changed := false
	for i := range p.Accounts {
		if p.Accounts[i].ID == "" {
			p.Accounts[i].ID = NewAccountID()
			changed = true
		}
	}
	return changed
}

// Kind reports which side of net worth the account contributes to:
// is_asset when present, otherwise debt when it carries a loan or is a
// credit card, otherwise asset.
func (a AccountConfig) Kind() model.Kind {
	if a.IsAsset != nil {
		if *a.IsAsset {
			return model.KindAsset
		}
		return model.KindDebt
	}
	for _, h := range a.Holdings {
		if h.Debt != nil {
			return model.KindDebt
		}
	}
	if a.Type == model.AccountTypeCreditCard {
		return model.KindDebt
	}
	return model.KindAsset
}

// MarshalJSON writes whichever side of the holding is set.
func (h HoldingConfig) MarshalJSON() ([]byte, error) {
	switch {
	case h.Asset != nil && h.Debt != nil:
		return nil, fmt.Errorf("holding is both an asset and a debt")
	case h.Asset != nil:
		return json.Marshal(h.Asset)
	case h.Debt != nil:
		return json.Marshal(h.Debt)
	}
	return nil, fmt.Errorf("empty holding")
}

// UnmarshalJSON reads an asset entry (has "ticker") or a debt entry (has
// "og_principal" or "apr").
func (h *HoldingConfig) UnmarshalJSON(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	_, hasTicker := keys["ticker"]
	_, hasPrincipal := keys["og_principal"]
	_, hasAPR := keys["apr"]
	isDebt := hasPrincipal || hasAPR

	switch {
	case hasTicker && isDebt:
		return fmt.Errorf("holding has both asset and debt fields")
	case hasTicker:
		var a AssetConfig
		if err := json.Unmarshal(data, &a); err != nil {
			return fmt.Errorf("asset holding: %w", err)
		}
		a.Ticker = model.NormalizeTicker(a.Ticker)
		*h = HoldingConfig{Asset: &a}
	case isDebt:
		var d DebtConfig
		if err := json.Unmarshal(data, &d); err != nil {
			return fmt.Errorf("debt holding: %w", err)
		}
		*h = HoldingConfig{Debt: &d}
	default:
		return fmt.Errorf("holding %s is neither an asset (ticker) nor a debt (og_principal)", bytes.TrimSpace(data))
	}
	return nil
}
