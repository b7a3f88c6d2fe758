package adapter

import (
	"errors"
	"fmt"
)

// ErrProviderRequestFailed is matched by every non-success provider response.
var ErrProviderRequestFailed = errors.New("provider request failed")

// RequestError reports a non-success response from a provider endpoint.
// Body carries the raw response text.
type RequestError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: request failed (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

func (e *RequestError) Unwrap() error {
	return ErrProviderRequestFailed
}
