// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the remote clients.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/pdiddy/movie-assistant/pkg/types"
)

// ErrMalformed marks a 2xx response whose body could not be decoded.
var ErrMalformed = errors.New("malformed response body")

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 512

// NewLimiter returns a token bucket allowing rps requests per second with a
// burst of one second's worth. rps <= 0 disables limiting.
func NewLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(rps), int(math.Ceil(rps)))
}

// GetJSON performs req exactly once and decodes a JSON body into dst. When
// limiter is non-nil it waits for a token first. Network failures, non-2xx
// statuses and undecodable bodies are returned as *types.RemoteServiceError
// labelled with service and op.
func GetJSON(ctx context.Context, client *http.Client, limiter *rate.Limiter, req *http.Request, service, op string, dst any) error {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return &types.RemoteServiceError{Service: service, Op: op, Err: err}
		}
	}
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return &types.RemoteServiceError{Service: service, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var cause error
		if msg := strings.TrimSpace(string(body)); msg != "" {
			cause = errors.New(msg)
		}
		return &types.RemoteServiceError{Service: service, Op: op, StatusCode: resp.StatusCode, Err: cause}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &types.RemoteServiceError{Service: service, Op: op, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	return nil
}
