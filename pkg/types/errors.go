// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// ErrNoResults reports that a request matched no movies. It is not a
// failure; callers render it as a friendly "nothing found" reply.
var ErrNoResults = errors.New("no matching movies")

// ConfigurationError reports a missing or invalid setting. It is fatal at startup.
type ConfigurationError struct {
	// Key is the configuration key (e.g. "telegram_token").
	Key string
	// Env is the environment variable that supplies the key.
	Env string
	// Reason describes what is wrong with the value.
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Env != "" {
		return fmt.Sprintf("configuration: %s (%s) %s", e.Key, e.Env, e.Reason)
	}
	return fmt.Sprintf("configuration: %s %s", e.Key, e.Reason)
}

// RemoteServiceError reports a failed call to the catalog or the language
// model: a network error, a non-2xx status or a malformed response body.
type RemoteServiceError struct {
	// Service names the remote system ("tmdb", "openrouter", "anthropic").
	Service string
	// Op names the operation that failed (e.g. "search/movie").
	Op string
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int
	// Err is the underlying cause.
	Err error
}

func (e *RemoteServiceError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s %s: HTTP %d: %v", e.Service, e.Op, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s %s: HTTP %d", e.Service, e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
	}
}

func (e *RemoteServiceError) Unwrap() error { return e.Err }

// IsRemoteServiceError reports whether err wraps a RemoteServiceError.
func IsRemoteServiceError(err error) bool {
	var rse *RemoteServiceError
	return errors.As(err, &rse)
}
