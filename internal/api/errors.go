package api

import "fmt"

// Error codes surfaced to callers. HTTP failures that carry no domain code
// use the stringified status code instead (e.g. "404", "429").
const (
	CodeNetworkError      = "NETWORK_ERROR"
	CodeAuthRequired      = "AUTH_REQUIRED"
	CodeAuthExpired       = "AUTH_EXPIRED"
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	CodeSiteNotAccessible = "SITE_NOT_ACCESSIBLE"
	CodeScanTimeout       = "SCAN_TIMEOUT"
	CodeInvalidResponse   = "INVALID_RESPONSE"
)

// APIError is the normalized failure shape for every client operation.
// Client methods never panic and never return raw transport errors.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
