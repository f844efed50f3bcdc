package apiclient

import (
	"errors"
	"fmt"
)

// Error is returned for any non-2xx response. Body is the raw response text.
type Error struct {
	StatusCode int
	StatusText string
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.StatusText, e.Body)
}

// IsStatus reports whether err is an *Error with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
