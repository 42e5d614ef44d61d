// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/pdiddy/movie-assistant/pkg/types"
)

const anthropicService = "anthropic"

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	client      anthropic.Client
	model       string
	temperature float64
	maxTokens   int64
}

// NewAnthropic returns an Anthropic client for cfg. SDK retries are off.
func NewAnthropic(cfg types.LLMConfig, httpClient *http.Client) *AnthropicClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"))
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
	return &AnthropicClient{
		client:      anthropic.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
	}
}

// Name returns the provider identifier.
func (c *AnthropicClient) Name() string { return anthropicService }

// Explain sends the rendered prompt as one message.
func (c *AnthropicClient) Explain(ctx context.Context, req ExplainRequest) (string, error) {
	prompt, err := renderPrompt(req)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: anthropic.Float(c.temperature),
	})
	if err != nil {
		rse := &types.RemoteServiceError{Service: anthropicService, Op: "messages", Err: err}
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			rse.StatusCode = apiErr.StatusCode
		}
		return "", rse
	}

	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			if t := strings.TrimSpace(block.AsText().Text); t != "" {
				parts = append(parts, t)
			}
		}
	}
	if len(parts) == 0 {
		return "", &types.RemoteServiceError{Service: anthropicService, Op: "messages", Err: ErrEmptyResponse}
	}
	return strings.Join(parts, "\n\n"), nil
}
