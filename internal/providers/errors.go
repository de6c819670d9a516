package providers

import (
	"context"
	"errors"
	"net"

	"aigateway/internal/core"
)

// WireError classifies a transport-level failure from an upstream call.
// Timeouts (client budget or context deadline) become a distinct timeout
// error; everything else is a transport error. Protocol errors (non-success
// status, bad body) are constructed by the adapters themselves.
func WireError(providerID string, err error) *core.GatewayError {
	if isTimeout(err) {
		return core.NewTimeoutError(providerID, err)
	}
	return core.NewTransportError(providerID, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
