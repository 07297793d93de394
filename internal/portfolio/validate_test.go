package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bettertrack/bettertrack/internal/model"
)

func TestParse_InvalidAccountType(t *testing.T) {
	_, err := Parse([]byte(`{
		"name": "Test Portfolio", "owner": "Jane Doe",
		"accounts": [{"institution": "Test Bank", "acc_type": "invalid_type", "acc_holdings": null}]
	}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "accounts[0].acc_type")
	assert.Contains(t, err.Error(), "invalid_type")
}

func TestParse_InvalidAssetType(t *testing.T) {
	_, err := Parse([]byte(`{
		"name": "Test Portfolio", "owner": "Jane Doe",
		"accounts": [{
			"institution": "Vanguard", "acc_type": "brokerage",
			"acc_holdings": [{"type_": "invalid_asset_type", "name": "Test", "ticker": "TEST", "shares": 10}]
		}]
	}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "invalid_asset_type")
}

func TestParse_InvalidLiabilityType(t *testing.T) {
	_, err := Parse([]byte(`{
		"name": "P", "owner": "O",
		"accounts": [{
			"institution": "Lender", "acc_type": "credit-card",
			"acc_holdings": [{"type_": "mortgage", "name": "Loan", "apr": 5, "og_principal": 1000, "tenure": 12}]
		}]
	}`))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAccounts_ValidationBeforeConstruction(t *testing.T) {
	cfg := New("P", "O")
	cfg.Accounts = []AccountConfig{
		{Institution: "Good", Type: model.AccountTypeBank},
		{Institution: "Bad", Type: "savings"},
	}
	accounts, err := cfg.BuildAccounts()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, accounts, "no partial accounts")
}

func TestValidate_MultipleDebts(t *testing.T) {
	loan := func(name string) HoldingConfig {
		return HoldingConfig{Debt: &DebtConfig{Type: model.LiabilityTypePersonal, Name: name, OriginalPrincipal: dec("100")}}
	}
	cfg := New("P", "O")
	cfg.Accounts = []AccountConfig{
		{Institution: "Lender", Type: model.AccountTypeCreditCard, Holdings: []HoldingConfig{loan("a"), loan("b")}},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, model.ErrUnsupportedConfiguration)
}

func TestValidate_NegativeNumbers(t *testing.T) {
	neg := dec("-1")
	cfg := New("P", "O")
	cfg.Accounts = []AccountConfig{{
		Institution: "Vanguard",
		Type:        model.AccountTypeBrokerage,
		Holdings: []HoldingConfig{{Asset: &AssetConfig{
			Type: model.AssetTypeStocks, Name: "VTI", Ticker: "VTI",
			Shares: dec("-5"), CostBasis: &neg,
		}}},
	}}
	err := cfg.Validate()
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
	assert.Contains(t, err.Error(), "shares")
	assert.Contains(t, err.Error(), "cost_basis")
}

func TestValidate_NegativeCashAllowed(t *testing.T) {
	cfg := New("P", "O")
	cfg.Accounts = []AccountConfig{{Institution: "Chase", Type: model.AccountTypeBank, Cash: dec("-20")}}
	assert.NoError(t, cfg.Validate())
}

func TestValidate_DuplicateTicker(t *testing.T) {
	vti := func() HoldingConfig {
		return HoldingConfig{Asset: &AssetConfig{Type: model.AssetTypeStocks, Name: "VTI", Ticker: "VTI", Shares: dec("1")}}
	}
	cfg := New("P", "O")
	cfg.Accounts = []AccountConfig{{Institution: "V", Type: model.AccountTypeBrokerage, Holdings: []HoldingConfig{vti(), vti()}}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate ticker")
}

func TestValidate_DuplicateTickerIgnoresCase(t *testing.T) {
	holding := func(ticker string) HoldingConfig {
		return HoldingConfig{Asset: &AssetConfig{Type: model.AssetTypeStocks, Name: "VTI", Ticker: ticker, Shares: dec("1")}}
	}
	cfg := New("P", "O")
	cfg.Accounts = []AccountConfig{{Institution: "V", Type: model.AccountTypeBrokerage, Holdings: []HoldingConfig{holding("vti"), holding("VTI")}}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accounts[0].acc_holdings[1].ticker")

	_, err = Parse([]byte(`{
		"name": "P", "owner": "O",
		"accounts": [{
			"institution": "V", "acc_type": "brokerage",
			"acc_holdings": [
				{"type_": "stocks", "name": "VTI", "ticker": "vti", "shares": 1},
				{"type_": "stocks", "name": "VTI", "ticker": " VTI", "shares": 2}
			]
		}]
	}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "duplicate ticker")
}

func TestValidate_DebtAccountCash(t *testing.T) {
	_, err := Parse([]byte(`{
		"name": "P", "owner": "O",
		"accounts": [{"institution": "Amex", "acc_type": "credit-card", "cash": 500}]
	}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "accounts[0].cash")

	cfg, err := Parse([]byte(`{
		"name": "P", "owner": "O",
		"accounts": [{"institution": "Amex", "acc_type": "credit-card", "cash": 0}]
	}`))
	require.NoError(t, err)
	assert.Len(t, cfg.Accounts, 1)
}

func TestValidate_MixedHoldings(t *testing.T) {
	no := false
	cfg := New("P", "O")
	cfg.Accounts = []AccountConfig{{
		Institution: "V", Type: model.AccountTypeBrokerage, IsAsset: &no,
		Holdings: []HoldingConfig{{Asset: &AssetConfig{Type: model.AssetTypeStocks, Name: "VTI", Ticker: "VTI"}}},
	}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "debt account cannot hold assets")
}

func TestValidate_ConnectedBank(t *testing.T) {
	cfg := New("P", "O")
	cfg.Accounts = []AccountConfig{
		{ID: "a", Institution: "Vanguard", Type: model.AccountTypeBrokerage, ConnectedBank: "b"},
		{ID: "b", Institution: "Fidelity", Type: model.AccountTypeBrokerage},
		{ID: "c", Institution: "Schwab", Type: model.AccountTypeBrokerage, ConnectedBank: "missing"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a bank")
	assert.Contains(t, err.Error(), `unknown account "missing"`)

	cfg.Accounts[1].Type = model.AccountTypeCreditUnion
	cfg.Accounts[2].ConnectedBank = ""
	assert.NoError(t, cfg.Validate())
}

func TestValidate_DuplicateIDs(t *testing.T) {
	cfg := New("P", "O")
	cfg.Accounts = []AccountConfig{
		{ID: "x", Institution: "A", Type: model.AccountTypeBank},
		{ID: "x", Institution: "B", Type: model.AccountTypeBank},
	}
	assert.ErrorIs(t, cfg.Validate(), ErrValidation)
}

func TestValidate_RequiredFields(t *testing.T) {
	cfg := &PortfolioConfig{Accounts: []AccountConfig{{Type: model.AccountTypeBank}}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name: is required")
	assert.Contains(t, err.Error(), "owner: is required")
	assert.Contains(t, err.Error(), "accounts[0].institution: is required")
}

func TestEnsureIDs(t *testing.T) {
	cfg := New("P", "O")
	cfg.Accounts = []AccountConfig{{Institution: "A", Type: model.AccountTypeBank}, {ID: "keep", Institution: "B", Type: model.AccountTypeBank}}

	assert.True(t, cfg.EnsureIDs())
	assert.NotEmpty(t, cfg.Accounts[0].ID)
	assert.Equal(t, "keep", cfg.Accounts[1].ID)
	assert.False(t, cfg.EnsureIDs())
}
