package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bettertrack/bettertrack/internal/logger"
	"github.com/bettertrack/bettertrack/internal/model"
	"github.com/bettertrack/bettertrack/internal/portfolio"
	"github.com/bettertrack/bettertrack/internal/price"
	"github.com/bettertrack/bettertrack/internal/render"
)

func newUpdateCommand(a *app) *cobra.Command {
	var ticker string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Fetch latest prices for all holdings (or one ticker)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, a, ticker)
		},
	}

	cmd.Flags().StringVarP(&ticker, "ticker", "t", "", "update a specific ticker only")

	return cmd
}

func runUpdate(cmd *cobra.Command, a *app, ticker string) error {
	svc, err := a.service()
	if err != nil {
		return err
	}
	cache, err := a.prices()
	if err != nil {
		return err
	}

	var tickers []string
	if ticker != "" {
		t := model.NormalizeTicker(ticker)
		cache.Invalidate(t)
		tickers = []string{t}
	} else {
		cache.Clear()
		tickers = heldTickers(svc.Portfolio())
	}

	out := cmd.OutOrStdout()
	if len(tickers) == 0 {
		fmt.Fprintln(out, "No holdings to update.")
		return nil
	}

	var errs []error
	rows := make([][]string, 0, len(tickers))
	for _, t := range tickers {
		p, err := cache.Price(cmd.Context(), t)
		if err != nil {
			errs = append(errs, fmt.Errorf("updating %s: %w", t, err))
			rows = append(rows, []string{t, "failed"})
			// Every remaining lookup would fail the same way.
			if errors.Is(err, price.ErrMissingCredential) || errors.Is(err, price.ErrRateLimited) {
				break
			}
			continue
		}
		rows = append(rows, []string{t, render.Money(p)})
	}

	if err := a.savePrices(cache); err != nil {
		return err
	}
	if err := a.markdown(cmd, render.Table([]string{"Ticker", " Price"}, rows)); err != nil {
		return err
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if err := a.save(svc); err != nil {
		return err
	}
	logger.Get().Debugw("prices updated", "count", len(tickers))
	fmt.Fprintf(out, "Updated %d price(s).\n", len(tickers))
	return nil
}

// heldTickers lists every ticker held anywhere in p, first occurrence first.
func heldTickers(p *portfolio.PortfolioConfig) []string {
	seen := make(map[string]bool)
	var tickers []string
	for _, acct := range p.Accounts {
		for _, h := range acct.Holdings {
			if h.Asset == nil {
				continue
			}
			t := model.NormalizeTicker(h.Asset.Ticker)
			if seen[t] {
				continue
			}
			seen[t] = true
			tickers = append(tickers, t)
		}
	}
	return tickers
}
