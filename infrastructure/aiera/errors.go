package aiera

import (
	"errors"
	"fmt"
	"net/http"
)

// Errors returned by the client. APIError unwraps to one of the status
// sentinels.
var (
	ErrMissingAPIKey    = errors.New("no API key available; set AIERA_API_KEY")
	ErrUnauthorized     = errors.New("access denied")
	ErrEndpointNotFound = errors.New("endpoint not found")
	ErrTimeout          = errors.New("upstream request timed out")
	ErrUpstream         = errors.New("upstream error")
	ErrNetwork          = errors.New("network error calling Aiera API")
	ErrInvalidResponse  = errors.New("invalid response from Aiera API")
	ErrRateLimited      = errors.New("upstream rate limit exceeded")
)

// APIError reports a non-success status from the API.
type APIError struct {
	Status   int
	Endpoint string
	Body     string
}

func (e *APIError) Error() string {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Sprintf("access denied to %s (status %d); talk to your Aiera representative about gaining access", e.Endpoint, e.Status)
	case http.StatusNotFound:
		return fmt.Sprintf("endpoint %s not found", e.Endpoint)
	case http.StatusGatewayTimeout:
		return fmt.Sprintf("request to %s timed out", e.Endpoint)
	default:
		if e.Body != "" {
			return fmt.Sprintf("Aiera API error %d on %s: %s", e.Status, e.Endpoint, e.Body)
		}
		return fmt.Sprintf("Aiera API error %d on %s", e.Status, e.Endpoint)
	}
}

// Unwrap maps the status to a sentinel.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrEndpointNotFound
	case http.StatusGatewayTimeout:
		return ErrTimeout
	default:
		return ErrUpstream
	}
}

// Temporary returns true for statuses worth retrying.
func (e *APIError) Temporary() bool {
	switch e.Status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
