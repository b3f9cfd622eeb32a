package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Run one catalog query",
		Example: `  elcom-cli search 16A rocker switch, panel mount, 250V
  elcom-cli search --json "RS-1601"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := loadEngine(opts)
			if err != nil {
				return err
			}
			defer engine.Close()

			outcome, err := engine.Search.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(outcome)
			}
			_, err = fmt.Fprintln(out, engine.Formatter.RenderOutcome(outcome))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw search outcome as JSON")
	return cmd
}
