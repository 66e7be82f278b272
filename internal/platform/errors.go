package platform

import "fmt"

// ClassifyHTTP maps a provider HTTP status to the transport taxonomy.
// detail is the provider's error message, kept for logs.
func ClassifyHTTP(status int, detail string) error {
	switch {
	case status == 401 || status == 403:
		return fmt.Errorf("%w: %s", ErrUnauthenticated, detail)
	case status == 429:
		return fmt.Errorf("%w: %s", ErrRateLimited, detail)
	default:
		return fmt.Errorf("%w: http %d: %s", ErrNetwork, status, detail)
	}
}
