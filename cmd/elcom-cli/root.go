package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/elcom/backend/config"
	"github.com/elcom/backend/internal/app"
	"github.com/elcom/backend/internal/observability"
)

// rootOptions are the flags shared by every subcommand
type rootOptions struct {
	configFile  string
	catalogPath string
	verbose     bool
	noColor     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "elcom-cli",
		Short: "Search the Elcom product catalog from the terminal",
		Long: `elcom-cli runs the catalog search engine locally. Use "search" for a single
query, "chat" for an interactive session and "count" to check the loaded catalog.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file path")
	cmd.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "catalog JSON file (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		newSearchCmd(opts),
		newChatCmd(opts),
		newCountCmd(opts),
	)
	return cmd
}

// loadEngine builds the search engine. Logs go to stderr so they never mix
// with command output.
func loadEngine(opts *rootOptions) (*app.App, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.catalogPath != "" {
		cfg.Catalog.Path = opts.catalogPath
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	logger := observability.NewLogger(observability.LogConfig{
		Level:       level,
		Format:      "console",
		Output:      os.Stderr,
		ServiceName: "elcom-cli",
	})

	return app.New(cfg, logger)
}
