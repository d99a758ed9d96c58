// Package testutil contains helpers shared by tests.
package testutil

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

// GetPort gets a free port.
func GetPort(t *testing.T) string {
	t.Helper()

	li, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	_, port, err := net.SplitHostPort(li.Addr().String())
	require.NoError(t, err)

	_ = li.Close()

	return port
}

// ServeScript starts a TCP listener that runs script on every accepted
// connection and returns its address. The listener is closed when the
// test ends.
func ServeScript(t *testing.T, script func(conn net.Conn)) string {
	t.Helper()

	li, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = li.Close() })

	go func() {
		for {
			conn, err := li.Accept()
			if err != nil {
				return
			}
			go script(conn)
		}
	}()

	return li.Addr().String()
}
