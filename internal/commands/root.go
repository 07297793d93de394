package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bettertrack/bettertrack/internal/accounts"
	"github.com/bettertrack/bettertrack/internal/buildinfo"
	"github.com/bettertrack/bettertrack/internal/config"
	"github.com/bettertrack/bettertrack/internal/logger"
	"github.com/bettertrack/bettertrack/internal/model"
	"github.com/bettertrack/bettertrack/internal/portfolio"
	"github.com/bettertrack/bettertrack/internal/price"
	"github.com/bettertrack/bettertrack/internal/render"
)

var errPortfolioNotFound = errors.New("portfolio not found, run bettertrack init first")

// deps are the collaborators that reach outside the process.
type deps struct {
	quotes func(*config.Settings) model.PriceLookup
	now    func() time.Time
}

func defaultDeps() deps {
	return deps{
		quotes: func(s *config.Settings) model.PriceLookup {
			return price.NewAlphaVantage(s.AlphaVantage.APIKey, s.AlphaVantage.BaseURL, s.AlphaVantage.Timeout)
		},
		now: time.Now,
	}
}

// app is the state shared by every command of one invocation.
type app struct {
	deps     deps
	dir      string
	settings *config.Settings
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(defaultDeps())
}

func newRootCommand(d deps) *cobra.Command {
	a := &app{deps: d}

	rootCmd := &cobra.Command{
		Use:     "bettertrack",
		Short:   "Net worth and portfolio tracking",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.dir, "path", "p", defaultDir(), "portfolio directory")

	rootCmd.AddCommand(
		newInitCommand(a),
		newStatusCommand(a),
		newNetworthCommand(a),
		newUpdateCommand(a),
		newConfigCommand(a),
		newAccountsCommand(a),
		newHoldingsCommand(a),
	)

	return rootCmd
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bettertrack"
	}
	return filepath.Join(home, ".bettertrack")
}

func (a *app) setup() error {
	dir, err := expandHome(a.dir)
	if err != nil {
		return err
	}
	a.dir = dir

	settings, err := config.Resolve(a.dir)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	a.settings = settings

	if err := logger.Init(settings.Log.Level); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	logger.Get().Debugw("settings resolved", "dir", a.dir, "cache_ttl", settings.Prices.CacheTTL)
	return nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return filepath.Abs(p)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

func (a *app) portfolioFile() string { return filepath.Join(a.dir, portfolio.FileName) }
func (a *app) pricesFile() string    { return filepath.Join(a.dir, price.FileName) }
func (a *app) settingsFile() string  { return filepath.Join(a.dir, config.FileName) }

// service loads the portfolio in a.dir.
func (a *app) service() (*accounts.Service, error) {
	svc, err := accounts.Load(a.dir)
	if errors.Is(err, portfolio.ErrNotFound) {
		return nil, errPortfolioNotFound
	}
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func (a *app) save(svc *accounts.Service) error {
	return svc.Save(a.dir)
}

// prices returns the quote source wrapped in a cache seeded from prices.json.
func (a *app) prices() (*price.Cache, error) {
	c := price.NewCache(a.deps.quotes(a.settings), a.settings.Prices.CacheTTL, price.WithClock(a.deps.now))
	entries, err := price.LoadFile(a.pricesFile())
	if err != nil {
		return nil, err
	}
	c.Restore(entries)
	return c, nil
}

func (a *app) savePrices(c *price.Cache) error {
	return price.SaveFile(a.pricesFile(), c.Entries())
}

func (a *app) markdown(cmd *cobra.Command, md string) error {
	r, err := render.New(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return r.Markdown(md)
}

func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer("$", "", ",", "", "_", "").Replace(strings.TrimSpace(s))
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d, nil
}

func parseOptionalAmount(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := parseAmount(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// assetAccount resolves ref to an asset account built from the whole portfolio.
func assetAccount(svc *accounts.Service, ref string) (int, *model.AssetAccount, error) {
	i, acct, err := svc.Account(ref)
	if err != nil {
		return 0, nil, err
	}
	asset, ok := acct.(*model.AssetAccount)
	if !ok {
		return 0, nil, fmt.Errorf("account %s is a debt account", acct.Info().Institution)
	}
	return i, asset, nil
}
