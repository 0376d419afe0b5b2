package llm

import (
	"errors"
	"fmt"
)

// ErrLLM is the category every provider failure belongs to.
var ErrLLM = errors.New("llm error")

var (
	ErrConnection     = fmt.Errorf("%w: connection failed", ErrLLM)
	ErrRateLimit      = fmt.Errorf("%w: rate limit exceeded", ErrLLM)
	ErrAuthentication = fmt.Errorf("%w: authentication failed", ErrLLM)
	ErrResponseFormat = fmt.Errorf("%w: invalid response", ErrLLM)
)

// Error is returned by Client implementations. Kind is one of the sentinels
// above (or ErrLLM itself for an unclassified provider error).
type Error struct {
	Kind    error
	Message string
	Err     error
}

// NewError builds an *Error of the given kind.
func NewError(kind error, message string, cause error) *Error {
	if kind == nil {
		kind = ErrLLM
	}
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsLLMError reports whether err carries an *Error anywhere in its chain.
func IsLLMError(err error) bool {
	var target *Error
	return errors.As(err, &target)
}

// KindName returns a short label for the error kind, used in logs and metrics.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrConnection):
		return "connection"
	case errors.Is(err, ErrRateLimit):
		return "rate_limit"
	case errors.Is(err, ErrAuthentication):
		return "authentication"
	case errors.Is(err, ErrResponseFormat):
		return "response_format"
	case errors.Is(err, ErrLLM):
		return "llm"
	default:
		return "internal"
	}
}

// KindForStatus classifies an HTTP status returned by a provider.
func KindForStatus(status int) error {
	switch {
	case status == 401 || status == 403:
		return ErrAuthentication
	case status == 429 || status == 529:
		return ErrRateLimit
	case status >= 400:
		return ErrResponseFormat
	default:
		return ErrLLM
	}
}
