package tunnel

import (
	"encoding/json"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"
)

const defaultAuthTimeout = 5 * time.Second

// statusOKPattern matches JSON-ish success indicators, tolerating
// whitespace around the colon.
var statusOKPattern = regexp.MustCompile(`(?i)"status"\s*:\s*"ok"`)

type authFrame struct {
	Type string `json:"type"`
	Key  string `json:"key"`
}

// authenticate sends the auth frame for secretKey and waits for the remote
// to acknowledge it. Without a secret key it is a no-op. The wait is
// bounded by timeout; unrecognized replies are ignored until the deadline
// expires. The secret key is never placed in errors or logs.
func authenticate(conn net.Conn, secretKey string, timeout time.Duration) error {
	if secretKey == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = defaultAuthTimeout
	}

	frame, err := json.Marshal(authFrame{Type: "auth", Key: secretKey})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuthTransport, err)
	}
	if _, err := conn.Write(append(frame, '\n')); err != nil {
		return fmt.Errorf("%w: %v", ErrAuthTransport, err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return fmt.Errorf("%w: %v", ErrAuthTransport, err)
	}
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()

	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			switch classifyAuthReply(string(buf[:n])) {
			case authAccepted:
				return nil
			case authRejected:
				return ErrAuthRejected
			}
		}
		if err != nil {
			if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
				return ErrAuthTimeout
			}
			return fmt.Errorf("%w: %v", ErrAuthTransport, err)
		}
	}
}

type authReply int

const (
	authPending authReply = iota
	authAccepted
	authRejected
)

// classifyAuthReply interprets one received chunk as a whole indicator.
func classifyAuthReply(raw string) authReply {
	reply := strings.TrimSpace(raw)
	switch {
	case reply == "AUTH_OK", reply == "AUTH_SUCCESS":
		return authAccepted
	case statusOKPattern.MatchString(reply):
		return authAccepted
	case reply == "AUTH_FAIL":
		return authRejected
	case strings.Contains(strings.ToLower(reply), `"status":"error"`):
		return authRejected
	}
	return authPending
}
