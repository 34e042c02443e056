package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the stable category for a failed generation call.
type ErrorKind string

const (
	// KindUnavailable covers network failures and upstream 5xx.
	KindUnavailable ErrorKind = "unavailable"
	// KindRateLimited is an upstream 429 that survived the retry budget.
	KindRateLimited ErrorKind = "rate_limited"
	// KindTimeout is a deadline hit while waiting on the model.
	KindTimeout ErrorKind = "timeout"
	// KindBadOutput means the model answered but the content failed JSON
	// parsing or schema validation.
	KindBadOutput ErrorKind = "bad_output"
)

// GenerationError is what every failed adapter call resolves to. Handlers
// switch on Kind to pick a status code.
type GenerationError struct {
	Kind    ErrorKind
	Status  int // upstream HTTP status, 0 if none
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("openai: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("openai: %s: %s", e.Kind, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// AsGenerationError unwraps err into a *GenerationError if there is one.
func AsGenerationError(err error) (*GenerationError, bool) {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr, true
	}
	return nil, false
}

func badOutputError(message string, err error) *GenerationError {
	return &GenerationError{Kind: KindBadOutput, Message: message, Err: err}
}

// classifyTransportError maps a transport-level failure to a kind.
func classifyTransportError(err error) *GenerationError {
	var statusErr *upstreamStatusError
	if errors.As(err, &statusErr) {
		// Retries ran out on a retryable status; classify by that status.
		genErr := classifyStatusError(statusErr.status, "retries exhausted")
		genErr.Err = err
		return genErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &GenerationError{Kind: KindTimeout, Message: "model call timed out", Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &GenerationError{Kind: KindTimeout, Message: "model call cancelled", Err: err}
	}
	return &GenerationError{Kind: KindUnavailable, Message: "model unreachable", Err: err}
}

// classifyStatusError maps a non-2xx upstream status to a kind.
func classifyStatusError(status int, message string) *GenerationError {
	kind := KindUnavailable
	switch {
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case status == http.StatusRequestTimeout:
		kind = KindTimeout
	}
	return &GenerationError{Kind: kind, Status: status, Message: message}
}
