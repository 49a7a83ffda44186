package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tonearm/internal/catalog"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Catalog utilities",
	}

	catalogCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show catalog entry counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := catalog.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			albums, singletons, err := store.Counts(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Albums", "Singletons", "Database"},
				[][]string{{strconv.Itoa(albums), strconv.Itoa(singletons), store.Path()}},
				[]columnAlignment{alignRight, alignRight, alignLeft},
			))
			return nil
		},
	})

	return catalogCmd
}
