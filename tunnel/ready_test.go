package tunnel

import (
	"bytes"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwaitReadyReturnsResidue(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		_, _ = server.Write([]byte("READY\nGET / HTTP/1.1\r\n"))
	}()

	residue, err := awaitReady(client)
	require.NoError(t, err)
	assert.Equal(t, []byte("GET / HTTP/1.1\r\n"), residue)
}

func TestAwaitReadyEmptyResidue(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		_, _ = server.Write([]byte("READY\n"))
	}()

	residue, err := awaitReady(client)
	require.NoError(t, err)
	assert.Empty(t, residue)
}

func TestAwaitReadyAnswersPings(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = server.Write([]byte("PING\nPING\nREADY\nDATA"))
		pongs := make([]byte, 10)
		_, err := io.ReadFull(server, pongs)
		if !assert.NoError(t, err) {
			return
		}
		assert.Equal(t, []byte("PONG\nPONG\n"), pongs)
	}()

	residue, err := awaitReady(client)
	require.NoError(t, err)
	assert.Equal(t, []byte("DATA"), residue)
	<-done
}

func TestAwaitReadyUnknownLinesStayBuffered(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		_, _ = server.Write([]byte("HELLO\nWORLD\nREADY\ntail"))
	}()

	residue, err := awaitReady(client)
	require.NoError(t, err)
	assert.Equal(t, []byte("tail"), residue)
}

func TestAwaitReadyBufferCap(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer server.Close()

	go func() {
		// no newline anywhere, just junk past the cap
		_, _ = server.Write(bytes.Repeat([]byte{'j'}, 100_000))
	}()

	_, err := awaitReady(client)
	_ = client.Close()

	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Reason, "before READY")
}

func TestAwaitReadyPrematureClose(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer client.Close()

	go func() {
		_, _ = server.Write([]byte("PING\n"))
		pong := make([]byte, 5)
		_, _ = io.ReadFull(server, pong)
		_ = server.Close()
	}()

	_, err := awaitReady(client)
	assert.ErrorIs(t, err, ErrPrematureClose)
}
