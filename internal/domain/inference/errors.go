package inference

import (
	"errors"
	"fmt"
)

// ErrRateLimited indicates the model provider returned a quota/limit error
// (HTTP 429 or similar). Retried with backoff, then surfaced.
var ErrRateLimited = errors.New("model rate limited")

// ErrTimeout indicates the model call exceeded its per-attempt deadline.
var ErrTimeout = errors.New("model call timed out")

// ErrUnauthorized indicates the provider rejected the credentials. Never
// retried; surfaced to the caller immediately.
var ErrUnauthorized = errors.New("model auth rejected")

// MalformedResponseError means the model's output failed schema validation.
// Not retried automatically; the caller decides how to treat the period.
type MalformedResponseError struct {
	Reason string
	Raw    string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed model response: %s", e.Reason)
}
