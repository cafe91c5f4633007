package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"brickmatch/internal/catalog"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <catalog.csv>",
		Short: "Load or refresh local catalog records from a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open catalog file: %w", err)
			}
			defer file.Close()

			records, err := catalog.ParseCSV(file)
			if err != nil {
				return fmt.Errorf("parse catalog file: %w", err)
			}

			store, _, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			created, updated, err := store.UpsertCatalog(cmd.Context(), records)
			if err != nil {
				return fmt.Errorf("import catalog: %w", err)
			}
			initialized, skipped, err := store.InitializeFromCatalog(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialize resolution records: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d catalog records (%d new, %d updated)\n", len(records), created, updated)
			fmt.Fprintf(out, "Resolution records: %d created, %d already present\n", initialized, skipped)
			return nil
		},
	}
}

func newInitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create pending resolution records for catalog entries that lack one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			created, skipped, err := store.InitializeFromCatalog(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialize resolution records: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Resolution records: %d created, %d already present\n", created, skipped)
			return nil
		},
	}
}
