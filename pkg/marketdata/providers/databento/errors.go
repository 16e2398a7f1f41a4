package databento

import (
	"errors"
	"fmt"
)

// ErrNoData indicates the upstream answered successfully but the result set
// was empty, e.g. outside trading hours. Distinct from a transport failure.
var ErrNoData = errors.New("databento: no data available")

// ErrUnknownSymbol indicates the logical symbol has no continuous-contract
// mapping.
var ErrUnknownSymbol = errors.New("databento: unknown symbol")

// TransportError reports a request that either exhausted its retry budget or
// hit a terminal HTTP status. It carries the attempt count and the last cause.
type TransportError struct {
	Attempts   int
	LastStatus int // last HTTP status, 0 when the failure never reached HTTP
	Err        error
}

func (e *TransportError) Error() string {
	if e.LastStatus != 0 {
		return fmt.Sprintf("databento: request failed after %d attempt(s) (last status %d): %v", e.Attempts, e.LastStatus, e.Err)
	}
	return fmt.Sprintf("databento: request failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError wraps a malformed response payload together with a truncated
// copy of the raw text for diagnostics. Decode failures are never retried.
type DecodeError struct {
	Raw string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("databento: decode response: %v (raw: %s)", e.Err, e.Raw)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
