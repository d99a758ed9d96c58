package tunnel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineBufferSplitsLines(t *testing.T) {
	t.Parallel()

	lb := newLineBuffer()
	lb.Append([]byte("PING\nREA"))

	line, ok := lb.Next()
	require.True(t, ok)
	assert.Equal(t, "PING", line)
	lb.Consume()

	_, ok = lb.Next()
	assert.False(t, ok, "partial line must not resolve")

	lb.Append([]byte("DY\npayload"))
	line, ok = lb.Next()
	require.True(t, ok)
	assert.Equal(t, "READY", line)
	assert.Equal(t, []byte("payload"), lb.Rest())
}

func TestLineBufferTrimsWhitespace(t *testing.T) {
	t.Parallel()

	lb := newLineBuffer()
	lb.Append([]byte("  READY \r\n"))
	line, ok := lb.Next()
	require.True(t, ok)
	assert.Equal(t, "READY", line)
	assert.Empty(t, lb.Rest())
}

func TestLineBufferKeepLeavesBytesAndAdvances(t *testing.T) {
	t.Parallel()

	lb := newLineBuffer()
	lb.Append([]byte("junk\nREADY\ntail"))

	line, ok := lb.Next()
	require.True(t, ok)
	assert.Equal(t, "junk", line)
	lb.Keep()

	// the kept line stays buffered but the scanner moves past it
	line, ok = lb.Next()
	require.True(t, ok)
	assert.Equal(t, "READY", line)
	assert.Equal(t, []byte("tail"), lb.Rest())
}

func TestLineBufferConsumeRemovesLine(t *testing.T) {
	t.Parallel()

	lb := newLineBuffer()
	lb.Append([]byte("PING\nrest"))
	_, ok := lb.Next()
	require.True(t, ok)
	lb.Consume()

	lb.Append([]byte("\n"))
	line, ok := lb.Next()
	require.True(t, ok)
	assert.Equal(t, "rest", line)
}

func TestLineBufferOverflow(t *testing.T) {
	t.Parallel()

	lb := newLineBuffer()
	lb.Append(bytes.Repeat([]byte{'x'}, maxControlBuffer))
	assert.False(t, lb.Overflowed())

	lb.Append([]byte{'x'})
	assert.True(t, lb.Overflowed())
}
