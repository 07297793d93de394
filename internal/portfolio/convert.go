package portfolio

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bettertrack/bettertrack/internal/model"
)

// ToAsset converts the config to a domain asset.
func (c AssetConfig) ToAsset() model.Asset {
	a := model.Asset{
		Type:         c.Type,
		Name:         c.Name,
		Ticker:       model.NormalizeTicker(c.Ticker),
		Shares:       c.Shares,
		ExpenseRatio: c.ExpenseRatio,
	}
	if c.CostBasis != nil {
		a.CostBasis = decimal.NewNullDecimal(*c.CostBasis)
	}
	if c.Yield != nil {
		a.Yield = decimal.NewNullDecimal(*c.Yield)
	}
	return a
}

// ToLiability converts the config to a domain liability.
func (c DebtConfig) ToLiability() model.Liability {
	l := model.Liability{
		Type:              c.Type,
		Name:              c.Name,
		APR:               c.APR,
		OriginalPrincipal: c.OriginalPrincipal,
		TenureMonths:      c.Tenure,
	}
	if c.Balance != nil {
		l.Balance = decimal.NewNullDecimal(*c.Balance)
	}
	return l
}

// ToAccount builds the domain account for a single entry. Connected banks
// are resolved by PortfolioConfig.BuildAccounts.
func (a AccountConfig) ToAccount() (model.Account, error) {
	base := model.Base{ID: a.ID, Institution: a.Institution, Type: a.Type}

	switch a.Kind() {
	case model.KindDebt:
		var liabilities []model.Liability
		for _, h := range a.Holdings {
			if h.Asset != nil {
				return nil, fmt.Errorf("account %s: debt account cannot hold asset %s", a.Institution, h.Asset.Ticker)
			}
			if h.Debt != nil {
				liabilities = append(liabilities, h.Debt.ToLiability())
			}
		}
		d, err := model.NewDebtAccount(base, liabilities)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", a.Institution, err)
		}
		return d, nil
	default:
		acct := model.NewAssetAccount(base, a.Cash)
		for _, h := range a.Holdings {
			if h.Debt != nil {
				return nil, fmt.Errorf("account %s: asset account cannot hold debt %s", a.Institution, h.Debt.Name)
			}
			if h.Asset == nil {
				continue
			}
			if err := acct.AddHolding(h.Asset.ToAsset()); err != nil {
				return nil, fmt.Errorf("account %s: %w", a.Institution, err)
			}
		}
		return acct, nil
	}
}

// BuildAccounts validates the whole document and then builds every account in
// stored order. Nothing is built when validation fails.
func (p *PortfolioConfig) BuildAccounts() ([]model.Account, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	accounts := make([]model.Account, len(p.Accounts))
	byID := make(map[string]model.Account, len(p.Accounts))
	for i, cfg := range p.Accounts {
		acct, err := cfg.ToAccount()
		if err != nil {
			return nil, err
		}
		accounts[i] = acct
		if cfg.ID != "" {
			byID[cfg.ID] = acct
		}
	}

	for i, cfg := range p.Accounts {
		if cfg.ConnectedBank == "" {
			continue
		}
		if err := accounts[i].Info().ConnectBank(byID[cfg.ConnectedBank]); err != nil {
			return nil, fmt.Errorf("account %s: %w", cfg.Institution, err)
		}
	}
	return accounts, nil
}

// AccountConfigFrom converts a domain account back into its persisted form.
func AccountConfigFrom(acct model.Account) AccountConfig {
	info := acct.Info()
	cfg := AccountConfig{
		ID:          info.ID,
		Institution: info.Institution,
		Type:        info.Type,
	}
	if info.ConnectedBank != nil {
		cfg.ConnectedBank = info.ConnectedBank.Info().ID
	}

	switch a := acct.(type) {
	case *model.AssetAccount:
		isAsset := true
		cfg.IsAsset = &isAsset
		cfg.Cash = a.Cash()
		for _, h := range a.Holdings() {
			ac := AssetConfigFrom(h)
			cfg.Holdings = append(cfg.Holdings, HoldingConfig{Asset: &ac})
		}
	case *model.DebtAccount:
		isAsset := false
		cfg.IsAsset = &isAsset
		if l, ok := a.Liability(); ok {
			dc := DebtConfigFrom(l)
			cfg.Holdings = append(cfg.Holdings, HoldingConfig{Debt: &dc})
		}
	}
	return cfg
}

// AssetConfigFrom converts a domain asset into its persisted form.
func AssetConfigFrom(a model.Asset) AssetConfig {
	c := AssetConfig{
		Type:         a.Type,
		Name:         a.Name,
		Ticker:       a.Ticker,
		Shares:       a.Shares,
		ExpenseRatio: a.ExpenseRatio,
	}
	if a.CostBasis.Valid {
		v := a.CostBasis.Decimal
		c.CostBasis = &v
	}
	if a.Yield.Valid {
		v := a.Yield.Decimal
		c.Yield = &v
	}
	return c
}

// DebtConfigFrom converts a domain liability into its persisted form.
func DebtConfigFrom(l model.Liability) DebtConfig {
	c := DebtConfig{
		Type:              l.Type,
		Name:              l.Name,
		APR:               l.APR,
		OriginalPrincipal: l.OriginalPrincipal,
		Tenure:            l.TenureMonths,
	}
	if l.Balance.Valid {
		v := l.Balance.Decimal
		c.Balance = &v
	}
	return c
}
