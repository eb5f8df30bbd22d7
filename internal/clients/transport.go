package clients

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"storefront/internal/domain"
)

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}

// classifyTransportError maps a failed round trip to the upstream sentinels.
func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
}

func badResponse(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrUpstreamBadResponse, fmt.Sprintf(format, args...))
}
