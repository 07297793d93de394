package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bettertrack/bettertrack/internal/model"
	"github.com/bettertrack/bettertrack/internal/networth"
	"github.com/bettertrack/bettertrack/internal/portfolio"
)

const shortID = 8

// ShortID trims an account id for display.
func ShortID(id string) string {
	if len(id) > shortID {
		return id[:shortID]
	}
	return id
}

// Status is the one-screen summary printed by "status".
func Status(p *portfolio.PortfolioConfig, b *networth.Breakdown) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\nOwner: %s\n\n", escape(p.Name), escape(p.Owner))
	sb.WriteString(Table([]string{"", " Amount"}, [][]string{
		{"Total assets", Money(b.Assets)},
		{"Total debts", Money(b.Debts)},
		{"Net worth", Money(b.NetWorth)},
	}))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%d account(s). %s\n", len(b.Lines), updated(p.LastUpdated))
	return sb.String()
}

func updated(t *portfolio.Timestamp) string {
	if t == nil {
		return "Never updated."
	}
	return "Last updated " + t.Local().Format("2006-01-02 15:04") + "."
}

// Breakdown is the per-account table printed by "networth".
func Breakdown(b *networth.Breakdown) string {
	rows := make([][]string, 0, len(b.Lines)+1)
	for i, l := range b.Lines {
		info := l.Account.Info()
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			info.Institution,
			string(info.Type),
			string(l.Account.Kind()),
			Money(l.Signed),
		})
	}
	rows = append(rows, []string{"", "Net worth", "", "", Money(b.NetWorth)})

	var sb strings.Builder
	sb.WriteString("# Net worth\n\n")
	sb.WriteString(Table([]string{" #", "Institution", "Type", "Kind", " Total"}, rows))
	return sb.String()
}

// AccountRow is one line of "accounts list".
type AccountRow struct {
	Position int // 1-based position in the portfolio
	Account  portfolio.AccountConfig
	Bank     string // connected bank's institution, if any
}

// Accounts is the table printed by "accounts list".
func Accounts(accts []AccountRow) string {
	rows := make([][]string, 0, len(accts))
	for _, r := range accts {
		a := r.Account
		cash := Money(a.Cash)
		if a.Kind() == model.KindDebt {
			cash = "-"
		}
		bank := r.Bank
		if bank == "" {
			bank = "-"
		}
		rows = append(rows, []string{
			strconv.Itoa(r.Position),
			ShortID(a.ID),
			a.Institution,
			string(a.Type),
			string(a.Kind()),
			bank,
			cash,
			strconv.Itoa(len(a.Holdings)),
		})
	}
	return Table([]string{" #", "ID", "Institution", "Type", "Kind", "Bank", " Cash", " Holdings"}, rows)
}

// Account is the detail view printed by "accounts show".
func Account(acct model.Account) string {
	info := acct.Info()

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", escape(info.Institution))
	fields := [][]string{
		{"ID", info.ID},
		{"Type", string(info.Type)},
		{"Kind", string(acct.Kind())},
	}
	if info.ConnectedBank != nil {
		fields = append(fields, []string{"Connected bank", info.ConnectedBank.Info().Institution})
	}

	switch a := acct.(type) {
	case *model.AssetAccount:
		fields = append(fields, []string{"Cash", Money(a.Cash())})
		sb.WriteString(Table([]string{"Field", "Value"}, fields))
		if hs := a.Holdings(); len(hs) > 0 {
			sb.WriteString("\n## Holdings\n\n")
			sb.WriteString(holdingsTable(nil, hs))
		}
	case *model.DebtAccount:
		sb.WriteString(Table([]string{"Field", "Value"}, fields))
		if l, ok := a.Liability(); ok {
			sb.WriteString("\n## Liability\n\n")
			sb.WriteString(Table(
				[]string{"Name", "Type", " APR", " Principal", " Tenure", " Outstanding"},
				[][]string{{
					l.Name,
					string(l.Type),
					Percent(l.APR),
					Money(l.OriginalPrincipal),
					strconv.Itoa(l.TenureMonths) + " mo",
					Money(l.Outstanding()),
				}},
			))
		}
	}
	return sb.String()
}

// HoldingRow is one position together with the account holding it.
type HoldingRow struct {
	Account string
	Asset   model.Asset
}

// Holdings is the table printed by "holdings list".
func Holdings(rows []HoldingRow) string {
	accounts := make([]string, len(rows))
	assets := make([]model.Asset, len(rows))
	for i, r := range rows {
		accounts[i] = r.Account
		assets[i] = r.Asset
	}
	return holdingsTable(accounts, assets)
}

func holdingsTable(accounts []string, assets []model.Asset) string {
	headers := []string{"Ticker", "Name", "Type", " Shares", " Cost basis", " Yield", " Expense ratio"}
	if accounts != nil {
		headers = append([]string{"Account"}, headers...)
	}
	rows := make([][]string, 0, len(assets))
	for i, a := range assets {
		yield := "-"
		if a.Yield.Valid {
			yield = Percent(a.Yield.Decimal)
		}
		row := []string{
			a.Ticker,
			a.Name,
			string(a.Type),
			Quantity(a.Shares),
			Optional(a.CostBasis),
			yield,
			Percent(a.ExpenseRatio),
		}
		if accounts != nil {
			row = append([]string{accounts[i]}, row...)
		}
		rows = append(rows, row)
	}
	return Table(headers, rows)
}
