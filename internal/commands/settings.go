package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bettertrack/bettertrack/internal/config"
	"github.com/bettertrack/bettertrack/internal/render"
)

func newConfigCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config [key] [value]",
		Short: "View or set configuration values",
		Example: "  bettertrack config\n" +
			"  bettertrack config prices.cache_ttl\n" +
			"  bettertrack config ALPHAVANTAGE_API_KEY your_key_here",
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(cmd, a, args)
		},
	}
}

func runConfig(cmd *cobra.Command, a *app, args []string) error {
	settings, err := config.LoadOrDefault(a.settingsFile())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch len(args) {
	case 0:
		rows := make([][]string, 0, len(config.Keys()))
		for _, k := range config.Keys() {
			v, _ := settings.Get(k)
			if k == "alphavantage.api_key" {
				v = maskSecret(v)
			}
			rows = append(rows, []string{k, v})
		}
		return a.markdown(cmd, render.Table([]string{"Key", "Value"}, rows))
	case 1:
		v, err := settings.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, v)
		return nil
	}

	if err := settings.Set(args[0], args[1]); err != nil {
		return err
	}
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", a.dir, err)
	}
	if err := config.Save(a.settingsFile(), settings); err != nil {
		return err
	}
	fmt.Fprintf(out, "Set %s\n", args[0])
	return nil
}

func maskSecret(s string) string {
	switch {
	case s == "":
		return "(not set)"
	case len(s) <= 4:
		return "****"
	}
	return "****" + s[len(s)-4:]
}
