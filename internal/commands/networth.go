package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bettertrack/bettertrack/internal/networth"
	"github.com/bettertrack/bettertrack/internal/portfolio"
	"github.com/bettertrack/bettertrack/internal/render"
)

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show net worth, total assets and total debts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, a)
		},
	}
}

func newNetworthCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "networth",
		Short: "Show the net worth breakdown by account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNetworth(cmd, a)
		},
	}
}

// breakdown reconciles the whole portfolio and keeps the prices it fetched.
func (a *app) breakdown(cmd *cobra.Command) (*portfolio.PortfolioConfig, *networth.Breakdown, error) {
	svc, err := a.service()
	if err != nil {
		return nil, nil, err
	}
	accts, err := svc.Portfolio().BuildAccounts()
	if err != nil {
		return nil, nil, err
	}
	cache, err := a.prices()
	if err != nil {
		return nil, nil, err
	}

	b, err := networth.NewCalculator(accts, cache).Breakdown(cmd.Context())
	if err != nil {
		return nil, nil, fmt.Errorf("calculating net worth: %w", err)
	}
	if err := a.savePrices(cache); err != nil {
		return nil, nil, err
	}
	return svc.Portfolio(), b, nil
}

func runStatus(cmd *cobra.Command, a *app) error {
	p, b, err := a.breakdown(cmd)
	if err != nil {
		return err
	}
	return a.markdown(cmd, render.Status(p, b))
}

func runNetworth(cmd *cobra.Command, a *app) error {
	_, b, err := a.breakdown(cmd)
	if err != nil {
		return err
	}
	if len(b.Lines) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No accounts found in portfolio.")
		return nil
	}
	return a.markdown(cmd, render.Breakdown(b))
}
