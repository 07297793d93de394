package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/bettertrack/bettertrack/internal/accounts"
	"github.com/bettertrack/bettertrack/internal/config"
	"github.com/bettertrack/bettertrack/internal/logger"
	"github.com/bettertrack/bettertrack/internal/portfolio"
)

func newInitCommand(a *app) *cobra.Command {
	var force bool
	var name string
	var owner string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new portfolio",
		Long: "Creates portfolio.json in the portfolio directory (~/.bettertrack by default).\n" +
			"If the directory already exists, use --force to overwrite.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, a, name, owner, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing portfolio")
	cmd.Flags().StringVarP(&name, "name", "n", "My Portfolio", "portfolio name")
	cmd.Flags().StringVarP(&owner, "owner", "o", "User", "portfolio owner")

	return cmd
}

func runInit(cmd *cobra.Command, a *app, name, owner string, force bool) error {
	_, err := os.Stat(a.dir)
	switch {
	case err == nil && !force:
		return fmt.Errorf("portfolio path already exists at %s, use --force to overwrite", a.dir)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("checking %s: %w", a.dir, err)
	}

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", a.dir, err)
	}

	cfg := portfolio.New(name, owner)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := accounts.NewService(cfg).Save(a.dir); err != nil {
		return err
	}

	if _, err := os.Stat(a.settingsFile()); errors.Is(err, fs.ErrNotExist) {
		if err := config.Save(a.settingsFile(), config.Default()); err != nil {
			return err
		}
	}
	logger.Get().Debugw("portfolio initialized", "path", a.portfolioFile(), "force", force)

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized portfolio at %s for %s's '%s'\n", a.dir, owner, name)
	return nil
}
