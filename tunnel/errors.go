package tunnel

import (
	"errors"
	"fmt"
	"syscall"
)

var (
	// ErrAuthTimeout indicates the remote did not answer the auth frame
	// before the deadline.
	ErrAuthTimeout = errors.New("authentication timed out")
	// ErrAuthRejected indicates the remote refused the secret key.
	ErrAuthRejected = errors.New("authentication rejected")
	// ErrAuthTransport indicates the connection failed or closed before a
	// definitive auth indicator was seen.
	ErrAuthTransport = errors.New("authentication transport failure")
	// ErrPrematureClose indicates the remote closed the connection before
	// reaching a required protocol state.
	ErrPrematureClose = errors.New("connection closed before READY")
	// ErrConnectionRefused labels dial failures caused by a refused
	// connection on either leg.
	ErrConnectionRefused = errors.New("connection refused")
	// ErrLocalConfig indicates the local TLS material could not be loaded.
	ErrLocalConfig = errors.New("invalid local connection config")
)

// A ProtocolError indicates the remote violated the control sub-protocol.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "protocol error: " + e.Reason
}

// labelRefused tags errors caused by a refused connection so callers can
// distinguish them without inspecting syscall errnos.
func labelRefused(err error) error {
	if err != nil && errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("%w: %v", ErrConnectionRefused, err)
	}
	return err
}
