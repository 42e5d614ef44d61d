// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/movie-assistant/internal/catalog"
	"github.com/pdiddy/movie-assistant/internal/config"
	"github.com/pdiddy/movie-assistant/internal/store"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <tmdb-id>...",
	Short: "Fetch movies from TMDB by id and cache them in the store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]int64, len(args))
		for i, a := range args {
			id, err := strconv.ParseInt(a, 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid TMDB id %q", a)
			}
			ids[i] = id
		}

		cfg, err := loadConfig(config.RequireCatalog, config.RequireDatabase)
		if err != nil {
			return err
		}
		st, err := store.Open(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer st.Close()
		cat := catalog.New(cfg.Catalog, nil)

		out := cmd.OutOrStdout()
		for _, id := range ids {
			m, err := cat.Movie(cmd.Context(), id)
			if err != nil {
				return err
			}
			added, err := st.SaveMovie(cmd.Context(), m)
			if err != nil {
				return err
			}
			state := "already stored"
			if added {
				state = "added"
			}
			fmt.Fprintf(out, "%d\t%s (%d)\t%s\n", m.ID, m.Title, m.ReleaseYear, state)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
