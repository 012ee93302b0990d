package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// A failed Generate call is either a transport failure (no answer
// arrived: rate limit, outage, timeout) or a content failure (the model
// answered, but the answer is unusable). Callers that degrade gracefully
// on bad output use IsContentFailure to tell the two apart.

// ErrRateLimit is a 429 from the provider.
type ErrRateLimit struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: rate limited, retry after %s: %v", providerName(e.Provider), e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("%s: rate limited: %v", providerName(e.Provider), e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers outages, network errors and timeouts.
type ErrProviderUnavailable struct {
	Provider string
	Err      error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return providerName(e.Provider) + ": unavailable"
	}
	return fmt.Sprintf("%s: unavailable: %v", providerName(e.Provider), e.Err)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrInvalidResponse is a response that does not conform to the
// requested schema. Content holds what the model sent.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid model response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded is a response cut off at the MaxTokens limit.
// Content holds the truncated text.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return fmt.Sprintf("model response truncated at max tokens (%d bytes received)", len(e.Content))
}

// IsContentFailure reports whether err means the model answered with
// unusable output rather than not answering at all.
func IsContentFailure(err error) bool {
	var inv *ErrInvalidResponse
	var trunc *ErrMaxTokensExceeded
	return errors.As(err, &inv) || errors.As(err, &trunc)
}

func providerName(p string) string {
	if p == "" {
		return "model provider"
	}
	return p
}
