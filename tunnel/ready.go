package tunnel

import (
	"errors"
	"fmt"
	"io"
	"net"
)

const (
	readyLine = "READY"
	pingLine  = "PING"
)

var pongReply = []byte("PONG\n")

// awaitReady consumes control lines from the remote until READY arrives
// and returns a copy of the bytes that followed its terminator. PING lines
// are answered with PONG and dropped. Anything else stays buffered under
// the cap; the wait itself is unbounded.
func awaitReady(conn net.Conn) ([]byte, error) {
	lb := newLineBuffer()
	buf := make([]byte, 32*1024)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			lb.Append(buf[:n])
			for {
				line, ok := lb.Next()
				if !ok {
					break
				}
				switch line {
				case readyLine:
					residue := append([]byte(nil), lb.Rest()...)
					return residue, nil
				case pingLine:
					if _, werr := conn.Write(pongReply); werr != nil {
						return nil, fmt.Errorf("failed to answer ping: %w", werr)
					}
					lb.Consume()
				default:
					lb.Keep()
				}
			}
			if lb.Overflowed() {
				return nil, &ProtocolError{Reason: "unexpected data before READY"}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrPrematureClose
			}
			return nil, fmt.Errorf("failed to read control line: %w", err)
		}
	}
}
