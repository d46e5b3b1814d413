package bokadirekt

import (
	"fmt"
	"net/http"
)

// RequestError is returned when the availability endpoint answers with a
// non-success status code.
type RequestError struct {
	StatusCode int
	URL        string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("bokadirekt: API request failed with status: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// ParseError is returned when the response body is not valid JSON or a slot
// in it is malformed.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bokadirekt: malformed availability response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
