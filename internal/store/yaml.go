// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/movie-assistant/internal/logging"
	"github.com/pdiddy/movie-assistant/pkg/types"
)

// SeedFile is the YAML layout shared by seed and export files.
type SeedFile struct {
	Movies []types.MovieRecord `yaml:"movies"`
}

// ImportSummary holds counts from one seed import.
type ImportSummary struct {
	Added   int
	Skipped int
	Invalid int
}

// Total returns the number of records read from the file.
func (s ImportSummary) Total() int {
	return s.Added + s.Skipped + s.Invalid
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ImportYAML loads movies from a seed file. Records that fail validation are
// logged and counted as invalid; records whose id is already stored are
// skipped. Unknown genre slugs are dropped from a record.
func (s *Store) ImportYAML(ctx context.Context, r io.Reader) (ImportSummary, error) {
	var file SeedFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return ImportSummary{}, fmt.Errorf("parsing seed file: %w", err)
	}

	log := logging.Component(ctx, "store")
	var (
		summary ImportSummary
		valid   []types.MovieRecord
	)
	for i, m := range file.Movies {
		if err := validate.Struct(m); err != nil {
			log.Warn().Int("index", i).Int64("movie_id", m.ID).Err(err).Msg("skipping invalid seed record")
			summary.Invalid++
			continue
		}
		m.Genres = knownGenres(m.Genres, func(g types.Genre) {
			log.Warn().Int64("movie_id", m.ID).Str("genre", string(g)).Msg("dropping unknown genre")
		})
		if m.Source == "" {
			m.Source = types.SourceLocal
		}
		valid = append(valid, m)
	}

	added, err := s.SaveMovies(ctx, valid)
	if err != nil {
		return summary, err
	}
	summary.Added = added
	summary.Skipped = len(valid) - added
	return summary, nil
}

// ExportYAML writes every stored movie to w in seed file layout and returns
// the number of records written.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer) (int, error) {
	movies, err := s.Movies(ctx)
	if err != nil {
		return 0, fmt.Errorf("querying for export: %w", err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(SeedFile{Movies: movies}); err != nil {
		return 0, fmt.Errorf("marshaling YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return 0, fmt.Errorf("marshaling YAML: %w", err)
	}
	return len(movies), nil
}

func knownGenres(gs []types.Genre, onUnknown func(types.Genre)) []types.Genre {
	out := gs[:0:0]
	for _, g := range gs {
		if g.Valid() {
			out = append(out, g)
		} else {
			onUnknown(g)
		}
	}
	return out
}
