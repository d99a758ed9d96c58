package tunnel

import (
	"bytes"
)

// maxControlBuffer bounds the bytes held while waiting for a control line
// to resolve. Exceeding it fails the connection rather than growing the
// buffer indefinitely.
const maxControlBuffer = 64 * 1024

// A lineBuffer splits an incoming byte stream into LF-delimited control
// lines. Bytes after the last consumed terminator are never discarded, so
// payload arriving in the same chunk as a terminal line can be handed to
// the next stage verbatim.
//
// Lines are peeked with Next and then either Consumed (removed from the
// buffer) or Kept (left in place, with the scan position advanced past
// them). Kept bytes still count toward the cap.
type lineBuffer struct {
	buf  []byte
	scan int // first byte not yet scanned for a terminator
	end  int // terminator index of the line returned by Next, -1 if none
}

func newLineBuffer() *lineBuffer {
	return &lineBuffer{end: -1}
}

// Append adds a chunk to the unresolved buffer.
func (b *lineBuffer) Append(p []byte) {
	b.buf = append(b.buf, p...)
}

// Overflowed reports whether the unresolved buffer exceeds the cap.
func (b *lineBuffer) Overflowed() bool {
	return len(b.buf) > maxControlBuffer
}

// Next peeks the next complete control line, trimmed of surrounding
// whitespace. It returns false when no terminator has arrived yet.
func (b *lineBuffer) Next() (string, bool) {
	i := bytes.IndexByte(b.buf[b.scan:], '\n')
	if i < 0 {
		b.end = -1
		return "", false
	}
	b.end = b.scan + i
	return string(bytes.TrimSpace(b.buf[b.scan : b.end+1])), true
}

// Consume removes the line returned by the last Next from the buffer.
func (b *lineBuffer) Consume() {
	if b.end < 0 {
		return
	}
	b.buf = append(b.buf[:b.scan], b.buf[b.end+1:]...)
	b.end = -1
}

// Keep leaves the line returned by the last Next in the buffer and
// advances the scan position past it.
func (b *lineBuffer) Keep() {
	if b.end < 0 {
		return
	}
	b.scan = b.end + 1
	b.end = -1
}

// Rest returns the bytes following the terminator of the line returned by
// the last Next. The slice aliases the buffer and must be copied if the
// buffer is reused.
func (b *lineBuffer) Rest() []byte {
	if b.end < 0 {
		return nil
	}
	return b.buf[b.end+1:]
}
