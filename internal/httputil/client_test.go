// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/movie-assistant/pkg/types"
)

type payload struct {
	Name string `json:"name"`
}

func newRequest(t *testing.T, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	return req
}

func TestGetJSON_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"Амели"}`))
	}))
	defer ts.Close()

	var got payload
	err := GetJSON(context.Background(), ts.Client(), nil, newRequest(t, ts.URL), "tmdb", "movie", &got)
	require.NoError(t, err)
	assert.Equal(t, "Амели", got.Name)
}

func TestGetJSON_SingleAttemptOnServerError(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	var got payload
	err := GetJSON(context.Background(), ts.Client(), nil, newRequest(t, ts.URL), "tmdb", "search/movie", &got)

	var rse *types.RemoteServiceError
	require.ErrorAs(t, err, &rse)
	assert.Equal(t, http.StatusServiceUnavailable, rse.StatusCode)
	assert.Equal(t, "tmdb", rse.Service)
	assert.Equal(t, "search/movie", rse.Op)
	assert.Contains(t, rse.Error(), "upstream down")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetJSON_RateLimitedStatusIsNotRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	err := GetJSON(context.Background(), ts.Client(), nil, newRequest(t, ts.URL), "tmdb", "discover/movie", &payload{})
	var rse *types.RemoteServiceError
	require.ErrorAs(t, err, &rse)
	assert.Equal(t, http.StatusTooManyRequests, rse.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetJSON_MalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"name": `))
	}))
	defer ts.Close()

	err := GetJSON(context.Background(), ts.Client(), nil, newRequest(t, ts.URL), "tmdb", "movie", &payload{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
	assert.True(t, types.IsRemoteServiceError(err))
}

func TestGetJSON_NetworkFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := ts.URL
	ts.Close()

	err := GetJSON(context.Background(), http.DefaultClient, nil, newRequest(t, url), "tmdb", "movie", &payload{})
	var rse *types.RemoteServiceError
	require.ErrorAs(t, err, &rse)
	assert.Zero(t, rse.StatusCode)
}

func TestGetJSON_LimiterHonoursContext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	limiter := NewLimiter(0.5)
	require.True(t, limiter.Allow(), "first token should be available")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := GetJSON(ctx, ts.Client(), limiter, newRequest(t, ts.URL), "tmdb", "movie", &payload{})
	assert.True(t, types.IsRemoteServiceError(err))
}

func TestNewLimiterDisabled(t *testing.T) {
	limiter := NewLimiter(0)
	for i := 0; i < 100; i++ {
		assert.True(t, limiter.Allow())
	}
}
