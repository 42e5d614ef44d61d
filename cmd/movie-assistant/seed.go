// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/movie-assistant/internal/config"
	"github.com/pdiddy/movie-assistant/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Load movies from a YAML file into the store",
	Long: `Seed imports a YAML file with a top-level "movies" list. Movies whose id
is already stored are skipped; stored records never change. Invalid entries
are reported and skipped. Use "-" to read standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(config.RequireDatabase)
		if err != nil {
			return err
		}
		st, err := store.Open(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer st.Close()

		var r io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening seed file: %w", err)
			}
			defer f.Close()
			r = f
		}

		sum, err := st.ImportYAML(cmd.Context(), r)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d movies (%d already stored, %d invalid)\n",
			sum.Added, sum.Skipped, sum.Invalid)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <file.yaml>",
	Short: "Write every stored movie to a YAML file",
	Long: `Export writes the store's movies, cached catalog results included, in
the format seed reads. Use "-" to write standard output.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(config.RequireDatabase)
		if err != nil {
			return err
		}
		st, err := store.Open(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer st.Close()

		if args[0] == "-" {
			_, err := st.ExportYAML(cmd.Context(), cmd.OutOrStdout())
			return err
		}

		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("creating export file: %w", err)
		}
		n, err := st.ExportYAML(cmd.Context(), f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d movies to %s\n", n, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(exportCmd)
}
