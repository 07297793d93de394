package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bettertrack/bettertrack/internal/accounts"
	"github.com/bettertrack/bettertrack/internal/model"
	"github.com/bettertrack/bettertrack/internal/portfolio"
	"github.com/bettertrack/bettertrack/internal/render"
)

func newAccountsCommand(a *app) *cobra.Command {
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
	}
	accountsCmd.AddCommand(
		newAccountsListCommand(a),
		newAccountsAddCommand(a),
		newAccountsRemoveCommand(a),
		newAccountsShowCommand(a),
		newAccountsTransferCommand(a, "deposit", "Deposit cash into an asset account"),
		newAccountsTransferCommand(a, "withdraw", "Withdraw cash from an asset account"),
		newAccountsTransferCommand(a, "interest", "Record interest earned on an asset account's cash"),
		newAccountsPayCommand(a),
	)
	return accountsCmd
}

func newAccountsListCommand(a *app) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountsList(cmd, a, kind)
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "only list asset or debt accounts")

	return cmd
}

func runAccountsList(cmd *cobra.Command, a *app, kind string) error {
	svc, err := a.service()
	if err != nil {
		return err
	}

	accts := svc.All()
	if kind != "" {
		k, err := parseKind(kind)
		if err != nil {
			return err
		}
		accts = svc.ByKind(k)
	}
	if len(accts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No accounts found in portfolio.")
		return nil
	}

	rows := make([]render.AccountRow, 0, len(accts))
	for _, acct := range accts {
		i, err := svc.Resolve(acct.ID)
		if err != nil {
			return err
		}
		row := render.AccountRow{Position: i + 1, Account: acct}
		if bank, ok := svc.Get(acct.ConnectedBank); ok {
			row.Bank = bank.Institution
		}
		rows = append(rows, row)
	}
	return a.markdown(cmd, render.Accounts(rows))
}

func parseKind(s string) (model.Kind, error) {
	kind := model.Kind(s)
	if kind != model.KindAsset && kind != model.KindDebt {
		return "", fmt.Errorf("unknown account kind %q, want asset or debt", s)
	}
	return kind, nil
}

type addAccountOptions struct {
	institution string
	accType     string
	kind        string
	cash        string
	connected   string

	loanName  string
	loanType  string
	apr       string
	principal string
	tenure    int
}

func newAccountsAddCommand(a *app) *cobra.Command {
	var opts addAccountOptions

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountsAdd(cmd, a, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.institution, "institution", "i", "", "institution name, e.g. Vanguard (required)")
	_ = cmd.MarkFlagRequired("institution")
	cmd.Flags().StringVarP(&opts.accType, "type", "t", "", "account type: bank, credit-union, brokerage, credit-card (required)")
	_ = cmd.MarkFlagRequired("type")
	cmd.Flags().StringVarP(&opts.kind, "kind", "k", "", "asset or debt (default depends on type)")
	cmd.Flags().StringVarP(&opts.cash, "cash", "c", "0", "current cash balance")
	cmd.Flags().StringVar(&opts.connected, "connected-bank", "", "bank account that funds this account")
	cmd.Flags().StringVar(&opts.loanName, "loan-name", "", "name of the loan carried by a debt account")
	cmd.Flags().StringVar(&opts.loanType, "loan-type", "", "loan type (default depends on account type)")
	cmd.Flags().StringVar(&opts.apr, "apr", "0", "loan APR in percent")
	cmd.Flags().StringVar(&opts.principal, "principal", "", "original loan principal")
	cmd.Flags().IntVar(&opts.tenure, "tenure", 0, "loan tenure in months")

	return cmd
}

func runAccountsAdd(cmd *cobra.Command, a *app, opts addAccountOptions) error {
	svc, err := a.service()
	if err != nil {
		return err
	}

	accType, err := model.ParseAccountType(opts.accType)
	if err != nil {
		return err
	}
	kind := accounts.DefaultKind(accType)
	if opts.kind != "" {
		if kind, err = parseKind(opts.kind); err != nil {
			return err
		}
	}
	cash, err := parseAmount(opts.cash)
	if err != nil {
		return err
	}

	acct := accounts.NewAccount(opts.institution, accType, kind, cash)
	if opts.connected != "" {
		i, err := svc.Resolve(opts.connected)
		if err != nil {
			return err
		}
		acct.ConnectedBank = svc.All()[i].ID
	}
	if kind == model.KindDebt && opts.principal != "" {
		debt, err := loanConfig(accType, opts)
		if err != nil {
			return err
		}
		acct.Holdings = []portfolio.HoldingConfig{{Debt: debt}}
	}

	added, err := svc.Add(acct)
	if err != nil {
		return err
	}
	if err := a.save(svc); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if kind == model.KindAsset {
		fmt.Fprintf(out, "Added %s (%s) with %s cash\n", added.Institution, added.Type, render.Money(cash))
	} else {
		fmt.Fprintf(out, "Added %s (%s) as a debt account\n", added.Institution, added.Type)
	}
	fmt.Fprintf(out, "Portfolio now has %d account(s)\n", len(svc.All()))
	return nil
}

func loanConfig(accType model.AccountType, opts addAccountOptions) (*portfolio.DebtConfig, error) {
	principal, err := parseAmount(opts.principal)
	if err != nil {
		return nil, err
	}
	apr, err := parseAmount(opts.apr)
	if err != nil {
		return nil, err
	}
	loanType := accounts.DefaultLiabilityType(accType)
	if opts.loanType != "" {
		if loanType, err = model.ParseLiabilityType(opts.loanType); err != nil {
			return nil, err
		}
	}
	name := opts.loanName
	if name == "" {
		name = opts.institution + " " + string(loanType)
	}
	return &portfolio.DebtConfig{
		Type:              loanType,
		Name:              name,
		APR:               apr,
		OriginalPrincipal: principal,
		Tenure:            opts.tenure,
	}, nil
}

func newAccountsRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <account>",
		Short: "Remove an account from the portfolio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			removed, err := svc.Remove(args[0])
			if err != nil {
				return err
			}
			if err := a.save(svc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s (%s)\n", removed.Institution, removed.Type)
			return nil
		},
	}
}

func newAccountsShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <account>",
		Short: "Show details for one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service()
			if err != nil {
				return err
			}
			_, acct, err := svc.Account(args[0])
			if err != nil {
				return err
			}
			return a.markdown(cmd, render.Account(acct))
		},
	}
}

func newAccountsTransferCommand(a *app, verb, short string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <account> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountsTransfer(cmd, a, verb, args[0], args[1])
		},
	}
}

func runAccountsTransfer(cmd *cobra.Command, a *app, verb, ref, raw string) error {
	amount, err := parseAmount(raw)
	if err != nil {
		return err
	}
	svc, err := a.service()
	if err != nil {
		return err
	}
	i, acct, err := assetAccount(svc, ref)
	if err != nil {
		return err
	}

	var cash decimal.Decimal
	switch verb {
	case "deposit":
		cash, err = acct.TransferIn(amount)
	case "withdraw":
		cash, err = acct.TransferOut(amount)
	case "interest":
		cash, err = acct.Interest(amount)
	default:
		err = fmt.Errorf("unknown transfer %q", verb)
	}
	if err != nil {
		return err
	}

	if err := svc.Replace(i, acct); err != nil {
		return err
	}
	if err := a.save(svc); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s cash balance: %s\n", acct.Institution, render.Money(cash))
	return nil
}

func newAccountsPayCommand(a *app) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "pay <account> <amount>",
		Short: "Make a payment toward a debt account's loan",
		Long: "Pays down the loan held by a debt account. The payment is taken from\n" +
			"--from, or from the account's connected bank when --from is not given.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountsPay(cmd, a, args[0], args[1], from)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "asset account the payment is taken from")

	return cmd
}

func runAccountsPay(cmd *cobra.Command, a *app, ref, raw, from string) error {
	amount, err := parseAmount(raw)
	if err != nil {
		return err
	}
	svc, err := a.service()
	if err != nil {
		return err
	}
	accts, err := svc.Portfolio().BuildAccounts()
	if err != nil {
		return err
	}

	di, err := svc.Resolve(ref)
	if err != nil {
		return err
	}
	debt, ok := accts[di].(*model.DebtAccount)
	if !ok {
		return fmt.Errorf("account %s is not a debt account", accts[di].Info().Institution)
	}

	si := -1
	var src *model.AssetAccount
	switch {
	case from != "":
		if si, err = svc.Resolve(from); err != nil {
			return err
		}
		if src, ok = accts[si].(*model.AssetAccount); !ok {
			return fmt.Errorf("account %s cannot fund a payment", accts[si].Info().Institution)
		}
	case debt.ConnectedBank != nil:
		if src, ok = debt.ConnectedBank.(*model.AssetAccount); ok {
			si, _ = svc.Resolve(src.ID)
		}
	}

	remaining, err := debt.MakePayment(amount, src)
	if err != nil {
		return err
	}

	if err := svc.Replace(di, debt); err != nil {
		return err
	}
	if src != nil && si >= 0 {
		if err := svc.Replace(si, src); err != nil {
			return err
		}
	}
	if err := a.save(svc); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Paid %s to %s, %s remaining\n", render.Money(amount), debt.Institution, render.Money(remaining))
	if src != nil {
		fmt.Fprintf(out, "%s cash balance: %s\n", src.Institution, render.Money(src.Cash()))
	}
	return nil
}
