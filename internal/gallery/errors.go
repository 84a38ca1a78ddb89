package gallery

import (
	"errors"
	"fmt"
)

// ErrDecode marks a response body that could not be parsed.
var ErrDecode = errors.New("failed to decode response")

// StatusError is returned when the API answers with a non-2xx status.
// Message holds the server supplied "message" field if there was one.
type StatusError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: unexpected status %d: %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Operation, e.StatusCode)
}

// AsStatusError unwraps err into a *StatusError if it carries one.
func AsStatusError(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}
