// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm asks a language model to explain a ranked list of movie
// candidates. Two providers are supported: OpenRouter through its
// OpenAI-compatible API and Anthropic. Calls are single attempts; failures
// surface as *types.RemoteServiceError.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pdiddy/movie-assistant/pkg/types"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("model returned no text")

// ExplainRequest carries everything the prompt is rendered from.
type ExplainRequest struct {
	// Query is the user's message as sent.
	Query string
	// Candidates are the matcher's ranked results, best first.
	Candidates []types.Candidate
	// FavoriteGenres are the user's stored preferences.
	FavoriteGenres []types.Genre
	// FavoriteMovies are movies the user rated highly, best first.
	FavoriteMovies []types.Rating
}

// Client produces a natural-language explanation for a set of candidates.
type Client interface {
	// Name returns the provider identifier.
	Name() string
	// Explain renders the prompt for req and returns the model's reply.
	Explain(ctx context.Context, req ExplainRequest) (string, error)
}

// New returns the client for cfg.Provider. httpClient may be nil.
func New(cfg types.LLMConfig, httpClient *http.Client) (Client, error) {
	switch cfg.Provider {
	case types.ProviderOpenRouter, "":
		return NewOpenRouter(cfg, httpClient), nil
	case types.ProviderAnthropic:
		return NewAnthropic(cfg, httpClient), nil
	default:
		return nil, &types.ConfigurationError{Key: "llm.provider", Reason: fmt.Sprintf("unknown provider %q", cfg.Provider)}
	}
}
