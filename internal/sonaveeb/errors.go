package sonaveeb

import (
	"errors"
	"fmt"
)

// ErrTimeout matches any RequestError caused by a deadline or client timeout.
var ErrTimeout = errors.New("request timed out")

// ErrBodyTooLarge is carried by a RequestError whose response exceeded the
// client's size limit.
var ErrBodyTooLarge = errors.New("response body too large")

// RequestError is returned for every failed call to the dictionary service:
// non-2xx responses, timeouts and transport errors alike.
type RequestError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("sonaveeb: %s: request failed: %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("sonaveeb: %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("sonaveeb: %s: request failed", e.Op)
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// Timeout reports whether the request ran out of time.
func (e *RequestError) Timeout() bool {
	return errors.Is(e.Err, ErrTimeout)
}
