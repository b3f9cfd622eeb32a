package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCountCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of products in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := loadEngine(opts)
			if err != nil {
				return err
			}
			defer engine.Close()

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d products loaded\n", engine.Search.CatalogSize())
			return err
		},
	}
}
