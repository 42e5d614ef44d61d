// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/pdiddy/movie-assistant/pkg/types"
)

// openRouterAPIBase is the OpenRouter OpenAI-compatible endpoint. Declared
// as a var so tests can substitute an httptest server.
var openRouterAPIBase = "https://openrouter.ai/api/v1/"

const (
	openRouterService = "openrouter"
	defaultMaxTokens  = 600
	projectURL        = "https://github.com/pdiddy/movie-assistant"
)

// OpenRouterClient calls chat completions on OpenRouter.
type OpenRouterClient struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int64
}

// NewOpenRouter returns an OpenRouter client for cfg. SDK retries are off.
func NewOpenRouter(cfg types.LLMConfig, httpClient *http.Client) *OpenRouterClient {
	base := cfg.BaseURL
	if base == "" {
		base = openRouterAPIBase
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(strings.TrimRight(base, "/") + "/"),
		option.WithMaxRetries(0),
		option.WithHeader("HTTP-Referer", projectURL),
		option.WithHeader("X-Title", "movie-assistant"),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, option.WithHeader("User-Agent", cfg.UserAgent))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &OpenRouterClient{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
	}
}

// Name returns the provider identifier.
func (c *OpenRouterClient) Name() string { return openRouterService }

// Explain sends the rendered prompt as one chat completion.
func (c *OpenRouterClient) Explain(ctx context.Context, req ExplainRequest) (string, error) {
	prompt, err := renderPrompt(req)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(c.maxTokens),
	})
	if err != nil {
		rse := &types.RemoteServiceError{Service: openRouterService, Op: "chat/completions", Err: err}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			rse.StatusCode = apiErr.StatusCode
		}
		return "", rse
	}

	if len(resp.Choices) == 0 {
		return "", &types.RemoteServiceError{Service: openRouterService, Op: "chat/completions", Err: ErrEmptyResponse}
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &types.RemoteServiceError{Service: openRouterService, Op: "chat/completions", Err: ErrEmptyResponse}
	}
	return text, nil
}
