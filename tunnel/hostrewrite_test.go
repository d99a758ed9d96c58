package tunnel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostRewriterReplacesFirstHost(t *testing.T) {
	t.Parallel()

	var dst bytes.Buffer
	w := newHostRewriter(&dst, "internal.example")

	n, err := w.Write([]byte("GET / HTTP/1.1\r\nHost: public.example\r\nAccept: */*\r\n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 53, n)
	assert.Equal(t, "GET / HTTP/1.1\r\nHost: internal.example\r\nAccept: */*\r\n\r\n", dst.String())
}

func TestHostRewriterLowercaseHeader(t *testing.T) {
	t.Parallel()

	var dst bytes.Buffer
	w := newHostRewriter(&dst, "internal.example")

	_, err := w.Write([]byte("GET / HTTP/1.1\r\nhost: public.example\r\n\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "GET / HTTP/1.1\r\nhost: internal.example\r\n\r\n", dst.String())
}

func TestHostRewriterReplacesAtMostOnce(t *testing.T) {
	t.Parallel()

	var dst bytes.Buffer
	w := newHostRewriter(&dst, "internal.example")

	_, err := w.Write([]byte("GET /a HTTP/1.1\r\nHost: one.example\r\n\r\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte("GET /b HTTP/1.1\r\nHost: two.example\r\n\r\n"))
	require.NoError(t, err)

	assert.Contains(t, dst.String(), "Host: internal.example")
	assert.Contains(t, dst.String(), "Host: two.example", "later requests pass unchanged")
}

func TestHostRewriterPassthroughWithoutMatch(t *testing.T) {
	t.Parallel()

	var dst bytes.Buffer
	w := newHostRewriter(&dst, "internal.example")

	payload := []byte{0x00, 0x01, 0x02, 0xff}
	n, err := w.Write(payload)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)
	assert.Equal(t, payload, dst.Bytes())
	assert.False(t, w.replaced)
}

func TestHostRewriterSplitHeaderNotReassembled(t *testing.T) {
	t.Parallel()

	var dst bytes.Buffer
	w := newHostRewriter(&dst, "internal.example")

	// header straddles the chunk boundary, so the rewrite cannot fire
	_, err := w.Write([]byte("GET / HTTP/1.1\r\nHo"))
	require.NoError(t, err)
	_, err = w.Write([]byte("st: public.example\r\n\r\n"))
	require.NoError(t, err)

	assert.Equal(t, "GET / HTTP/1.1\r\nHost: public.example\r\n\r\n", dst.String())
	assert.False(t, w.replaced)
}
