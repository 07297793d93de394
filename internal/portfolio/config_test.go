package portfolio

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bettertrack/bettertrack/internal/model"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func loadSample(t *testing.T) *PortfolioConfig {
	t.Helper()
	cfg, err := Load(filepath.Join("testdata", "sample_portfolio.json"))
	require.NoError(t, err)
	return cfg
}

func TestLoadSample(t *testing.T) {
	cfg := loadSample(t)

	assert.Equal(t, "Personal Portfolio", cfg.Name)
	assert.Equal(t, "John Doe", cfg.Owner)
	require.Len(t, cfg.Accounts, 4)
	require.NotNil(t, cfg.LastUpdated)
	assert.True(t, cfg.LastUpdated.Equal(time.Date(2025, 10, 6, 19, 30, 0, 0, time.UTC)))
}

func TestSampleAccountStructure(t *testing.T) {
	cfg := loadSample(t)

	vanguard, chase, fidelity, wells := cfg.Accounts[0], cfg.Accounts[1], cfg.Accounts[2], cfg.Accounts[3]

	assert.Equal(t, "Vanguard", vanguard.Institution)
	assert.Equal(t, model.AccountTypeBrokerage, vanguard.Type)
	assert.Len(t, vanguard.Holdings, 2)
	assert.Equal(t, model.KindAsset, vanguard.Kind())

	assert.Equal(t, model.AccountTypeBank, chase.Type)
	assert.Nil(t, chase.Holdings)

	assert.Len(t, fidelity.Holdings, 1)

	assert.Equal(t, model.KindDebt, wells.Kind(), "is_asset=false wins over bank type")
	require.NotNil(t, wells.Holdings[0].Debt)
	assert.Equal(t, model.LiabilityTypeHouse, wells.Holdings[0].Debt.Type)
}

func TestSampleAssetDetails(t *testing.T) {
	cfg := loadSample(t)
	vti := cfg.Accounts[0].Holdings[0].Asset
	bnd := cfg.Accounts[0].Holdings[1].Asset
	require.NotNil(t, vti)
	require.NotNil(t, bnd)

	assert.Equal(t, "VTI", vti.Ticker)
	assert.Equal(t, model.AssetTypeStocks, vti.Type)
	assert.True(t, vti.Shares.Equal(dec("100.5")))
	assert.True(t, vti.CostBasis.Equal(dec("200")))

	assert.Equal(t, model.AssetTypeBonds, bnd.Type)
	assert.True(t, bnd.Shares.Equal(dec("50")))
	assert.Nil(t, bnd.Yield, "null yield stays unknown")
}

func TestAssetConfigToAsset(t *testing.T) {
	cb, y := dec("200"), dec("1.5")
	a := AssetConfig{
		Type:         model.AssetTypeStocks,
		Name:         "Vanguard Total Stock Market ETF",
		Ticker:       "VTI",
		Shares:       dec("100.5"),
		CostBasis:    &cb,
		Yield:        &y,
		ExpenseRatio: dec("0.03"),
	}.ToAsset()

	assert.Equal(t, model.AssetTypeStocks, a.Type)
	assert.Equal(t, "VTI", a.Ticker)
	assert.True(t, a.Shares.Equal(dec("100.5")))
	assert.True(t, a.CostBasis.Valid)
	assert.True(t, a.CostBasis.Decimal.Equal(dec("200")))
	assert.True(t, a.Yield.Decimal.Equal(dec("1.5")))
	assert.True(t, a.ExpenseRatio.Equal(dec("0.03")))

	unpriced := AssetConfig{Type: model.AssetTypeStocks, Name: "X", Ticker: "X"}.ToAsset()
	assert.False(t, unpriced.CostBasis.Valid, "null cost basis is not zero")
}

func TestParse_NormalizesTickers(t *testing.T) {
	cfg, err := Parse([]byte(`{
		"name": "P", "owner": "O",
		"accounts": [{
			"institution": "V", "acc_type": "brokerage",
			"acc_holdings": [{"type_": "stocks", "name": "Total Market", "ticker": " vti ", "shares": 3}]
		}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, "VTI", cfg.Accounts[0].Holdings[0].Asset.Ticker)

	accounts, err := cfg.BuildAccounts()
	require.NoError(t, err)
	acct := accounts[0].(*model.AssetAccount)
	h, ok := acct.Holding("vti")
	require.True(t, ok)
	assert.True(t, h.Shares.Equal(dec("3")))

	// configs built in code go through the same normalization
	assert.Equal(t, "BND", AssetConfig{Ticker: "bnd"}.ToAsset().Ticker)
}

func TestDebtConfigToLiability(t *testing.T) {
	l := DebtConfig{
		Type:              model.LiabilityTypeHouse,
		Name:              "Home Mortgage",
		APR:               dec("3.5"),
		OriginalPrincipal: dec("320000"),
		Tenure:            360,
	}.ToLiability()

	assert.Equal(t, model.LiabilityTypeHouse, l.Type)
	assert.Equal(t, "Home Mortgage", l.Name)
	assert.True(t, l.APR.Equal(dec("3.5")))
	assert.True(t, l.Outstanding().Equal(dec("320000")))
	assert.Equal(t, 360, l.TenureMonths)
}

func TestAccountsConversion(t *testing.T) {
	cfg := loadSample(t)
	accounts, err := cfg.BuildAccounts()
	require.NoError(t, err)
	require.Len(t, accounts, 4)

	vanguard, ok := accounts[0].(*model.AssetAccount)
	require.True(t, ok)
	assert.Equal(t, "Vanguard", vanguard.Institution)
	assert.True(t, vanguard.Cash().Equal(dec("5000")))
	assert.Len(t, vanguard.Holdings(), 2)
	assert.Same(t, accounts[1], vanguard.ConnectedBank)

	_, ok = accounts[3].(*model.DebtAccount)
	assert.True(t, ok)
}

func TestKindInference(t *testing.T) {
	yes, no := true, false
	debt := HoldingConfig{Debt: &DebtConfig{Type: model.LiabilityTypeStudent, Name: "Loan"}}
	tests := []struct {
		name string
		acct AccountConfig
		want model.Kind
	}{
		{"bank", AccountConfig{Type: model.AccountTypeBank}, model.KindAsset},
		{"credit card", AccountConfig{Type: model.AccountTypeCreditCard}, model.KindDebt},
		{"holds a loan", AccountConfig{Type: model.AccountTypeBank, Holdings: []HoldingConfig{debt}}, model.KindDebt},
		{"explicit asset", AccountConfig{Type: model.AccountTypeCreditCard, IsAsset: &yes}, model.KindAsset},
		{"explicit debt", AccountConfig{Type: model.AccountTypeBank, IsAsset: &no}, model.KindDebt},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.acct.Kind(), tt.name)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := loadSample(t)
	accounts, err := cfg.BuildAccounts()
	require.NoError(t, err)

	out := New(cfg.Name, cfg.Owner)
	for _, acct := range accounts {
		out.Accounts = append(out.Accounts, AccountConfigFrom(acct))
	}

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, out))
	require.NotNil(t, out.LastUpdated)

	got, err := Load(path)
	require.NoError(t, err)
	require.Len(t, got.Accounts, 4)
	assert.Equal(t, cfg.Accounts[0].ConnectedBank, got.Accounts[0].ConnectedBank)
	assert.True(t, got.Accounts[0].Cash.Equal(dec("5000")))
	assert.True(t, got.Accounts[0].Holdings[0].Asset.Shares.Equal(dec("100.5")))
	assert.NotNil(t, got.Accounts[0].Holdings[1].Asset.CostBasis, "cost basis kept")
	assert.Equal(t, model.KindDebt, got.Accounts[3].Kind())
	assert.True(t, got.Accounts[3].Holdings[0].Debt.OriginalPrincipal.Equal(dec("320000")))
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), FileName))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHoldingJSON(t *testing.T) {
	var h HoldingConfig
	require.NoError(t, json.Unmarshal([]byte(`{"type_": "stocks", "name": "VTI", "ticker": "VTI", "shares": "10"}`), &h))
	require.NotNil(t, h.Asset)
	assert.Nil(t, h.Debt)

	require.NoError(t, json.Unmarshal([]byte(`{"type_": "auto-loan", "name": "Car", "apr": 4.5, "og_principal": 25000, "tenure": 60}`), &h))
	require.NotNil(t, h.Debt)
	assert.Nil(t, h.Asset)

	assert.Error(t, json.Unmarshal([]byte(`{"type_": "stocks", "name": "?"}`), &h))
	assert.Error(t, json.Unmarshal([]byte(`{"ticker": "VTI", "og_principal": 1}`), &h))

	data, err := json.Marshal(HoldingConfig{Debt: &DebtConfig{Type: model.LiabilityTypeAuto, Name: "Car"}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"og_principal"`)
	assert.NotContains(t, string(data), `"ticker"`)
}
