package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bettertrack/bettertrack/internal/accounts"
	"github.com/bettertrack/bettertrack/internal/model"
	"github.com/bettertrack/bettertrack/internal/portfolio"
	"github.com/bettertrack/bettertrack/internal/render"
)

func newHoldingsCommand(a *app) *cobra.Command {
	holdingsCmd := &cobra.Command{
		Use:   "holdings",
		Short: "Manage holdings",
	}
	holdingsCmd.AddCommand(
		newHoldingsListCommand(a),
		newHoldingsAddCommand(a),
		newHoldingsRemoveCommand(a),
		newHoldingsBuyCommand(a),
		newHoldingsSellCommand(a),
		newHoldingsDividendCommand(a),
		newHoldingsImportCommand(a),
		newHoldingsExportCommand(a),
	)
	return holdingsCmd
}

func newHoldingsListCommand(a *app) *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all holdings, optionally filtered by account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHoldingsList(cmd, a, account)
		},
	}

	cmd.Flags().StringVarP(&account, "account", "a", "", "filter by account")

	return cmd
}

func runHoldingsList(cmd *cobra.Command, a *app, account string) error {
	svc, err := a.service()
	if err != nil {
		return err
	}

	entries := svc.All()
	if account != "" {
		i, err := svc.Resolve(account)
		if err != nil {
			return err
		}
		entries = entries[i : i+1]
	}

	var rows []render.HoldingRow
	for _, acct := range entries {
		for _, h := range acct.Holdings {
			if h.Asset != nil {
				rows = append(rows, render.HoldingRow{Account: acct.Institution, Asset: h.Asset.ToAsset()})
			}
		}
	}
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No holdings found.")
		return nil
	}
	return a.markdown(cmd, render.Holdings(rows))
}

type holdingOptions struct {
	name         string
	assetType    string
	shares       string
	costBasis    string
	yield        string
	expenseRatio string
}

func (o holdingOptions) asset(ticker string) (model.Asset, error) {
	typ, err := model.ParseAssetType(o.assetType)
	if err != nil {
		return model.Asset{}, err
	}
	cfg := portfolio.AssetConfig{
		Type:   typ,
		Name:   o.name,
		Ticker: model.NormalizeTicker(ticker),
	}
	if cfg.Name == "" {
		cfg.Name = cfg.Ticker
	}
	if o.shares != "" {
		if cfg.Shares, err = parseAmount(o.shares); err != nil {
			return model.Asset{}, err
		}
	}
	if cfg.CostBasis, err = parseOptionalAmount(o.costBasis); err != nil {
		return model.Asset{}, err
	}
	if cfg.Yield, err = parseOptionalAmount(o.yield); err != nil {
		return model.Asset{}, err
	}
	if o.expenseRatio != "" {
		if cfg.ExpenseRatio, err = parseAmount(o.expenseRatio); err != nil {
			return model.Asset{}, err
		}
	}
	if cfg.Shares.IsNegative() || (cfg.CostBasis != nil && cfg.CostBasis.IsNegative()) {
		return model.Asset{}, fmt.Errorf("holding %s: %w", cfg.Ticker, model.ErrInvalidAmount)
	}
	return cfg.ToAsset(), nil
}

func holdingFlags(cmd *cobra.Command, o *holdingOptions, withShares bool) {
	cmd.Flags().StringVar(&o.name, "name", "", "security name (defaults to the ticker)")
	cmd.Flags().StringVar(&o.assetType, "type", string(model.AssetTypeStocks), "asset type")
	cmd.Flags().StringVar(&o.yield, "yield", "", "dividend yield in percent")
	cmd.Flags().StringVar(&o.expenseRatio, "expense-ratio", "", "expense ratio in percent")
	if withShares {
		cmd.Flags().StringVar(&o.shares, "shares", "", "number of shares (required)")
		_ = cmd.MarkFlagRequired("shares")
		cmd.Flags().StringVar(&o.costBasis, "cost-basis", "", "cost basis per share")
	}
}

func newHoldingsAddCommand(a *app) *cobra.Command {
	var opts holdingOptions

	cmd := &cobra.Command{
		Use:   "add <account> <ticker>",
		Short: "Add a holding to an account, merging with an existing position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			asset, err := opts.asset(args[1])
			if err != nil {
				return err
			}
			return updateAssetAccount(cmd, a, args[0], func(acct *model.AssetAccount) (string, error) {
				if err := acct.AddHolding(asset); err != nil {
					return "", err
				}
				h, _ := acct.Holding(asset.Ticker)
				return fmt.Sprintf("%s now holds %s shares of %s", acct.Institution, render.Quantity(h.Shares), h.Ticker), nil
			})
		},
	}
	holdingFlags(cmd, &opts, true)

	return cmd
}

func newHoldingsRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <account> <ticker>",
		Short: "Remove a holding from an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticker := model.NormalizeTicker(args[1])
			return updateAssetAccount(cmd, a, args[0], func(acct *model.AssetAccount) (string, error) {
				if _, err := acct.RemoveHolding(ticker); err != nil {
					return "", err
				}
				return fmt.Sprintf("Removed %s from %s", ticker, acct.Institution), nil
			})
		},
	}
}

func newHoldingsBuyCommand(a *app) *cobra.Command {
	var opts holdingOptions

	cmd := &cobra.Command{
		Use:   "buy <account> <ticker> <amount>",
		Short: "Spend cash on a security at its current price",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			asset, err := opts.asset(args[1])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			cache, err := a.prices()
			if err != nil {
				return err
			}
			err = updateAssetAccount(cmd, a, args[0], func(acct *model.AssetAccount) (string, error) {
				cash, err := acct.Buy(cmd.Context(), amount, asset, cache)
				if err != nil {
					return "", err
				}
				h, _ := acct.Holding(asset.Ticker)
				return fmt.Sprintf("Bought %s of %s, now %s shares; %s cash left",
					render.Money(amount), h.Ticker, render.Quantity(h.Shares), render.Money(cash)), nil
			})
			if err != nil {
				return err
			}
			return a.savePrices(cache)
		},
	}
	holdingFlags(cmd, &opts, false)

	return cmd
}

func newHoldingsSellCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sell <account> <ticker> <shares>",
		Short: "Sell shares at the current price and keep the proceeds as cash",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticker := model.NormalizeTicker(args[1])
			shares, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			cache, err := a.prices()
			if err != nil {
				return err
			}
			err = updateAssetAccount(cmd, a, args[0], func(acct *model.AssetAccount) (string, error) {
				proceeds, err := acct.Sell(cmd.Context(), ticker, shares, cache)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Sold %s shares of %s for %s; %s cash",
					render.Quantity(shares), ticker, render.Money(proceeds), render.Money(acct.Cash())), nil
			})
			if err != nil {
				return err
			}
			return a.savePrices(cache)
		},
	}
}

func newHoldingsDividendCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dividend <account> <ticker> <amount>",
		Short: "Record a cash dividend paid by a holding",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticker := model.NormalizeTicker(args[1])
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			return updateAssetAccount(cmd, a, args[0], func(acct *model.AssetAccount) (string, error) {
				cash, err := acct.Dividend(ticker, amount)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("%s cash balance: %s", acct.Institution, render.Money(cash)), nil
			})
		},
	}
}

func newHoldingsImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <account> <file.csv>",
		Short: "Import holdings from a CSV file",
		Long:  "The CSV header is ticker,name,type,shares,cost_basis,yield,expense_ratio.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[1], err)
			}
			defer f.Close()

			assets, err := accounts.ReadHoldings(f)
			if err != nil {
				return fmt.Errorf("importing %s: %w", args[1], err)
			}
			return updateAssetAccount(cmd, a, args[0], func(acct *model.AssetAccount) (string, error) {
				for _, asset := range assets {
					if err := acct.AddHolding(asset); err != nil {
						return "", err
					}
				}
				return fmt.Sprintf("Imported %d holding(s) into %s", len(assets), acct.Institution), nil
			})
		},
	}
}

func newHoldingsExportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <account> [file.csv]",
		Short: "Export an account's holdings as CSV (to stdout without a file)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			_, acct, err := assetAccount(svc, args[0])
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if len(args) == 2 {
				f, err := os.Create(args[1])
				if err != nil {
					return fmt.Errorf("creating %s: %w", args[1], err)
				}
				defer f.Close()
				w = f
			}
			if err := accounts.WriteHoldings(w, acct.Holdings()); err != nil {
				return fmt.Errorf("exporting holdings: %w", err)
			}
			if len(args) == 2 {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d holding(s) to %s\n", len(acct.Holdings()), args[1])
			}
			return nil
		},
	}
}

// updateAssetAccount applies fn to the asset account ref points to and saves
// the portfolio when fn succeeds. fn returns the message printed on success.
func updateAssetAccount(cmd *cobra.Command, a *app, ref string, fn func(*model.AssetAccount) (string, error)) error {
	svc, err := a.service()
	if err != nil {
		return err
	}
	i, acct, err := assetAccount(svc, ref)
	if err != nil {
		return err
	}

	msg, err := fn(acct)
	if err != nil {
		return err
	}
	if err := svc.Replace(i, acct); err != nil {
		return err
	}
	if err := a.save(svc); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}
