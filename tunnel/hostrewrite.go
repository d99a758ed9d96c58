package tunnel

import (
	"io"
	"regexp"
)

var hostHeaderPattern = regexp.MustCompile(`(\r\n[Hh]ost: )(\S+)`)

// A hostRewriter rewrites the value of the first HTTP Host header written
// through it, then degrades to a passthrough. A header split across two
// writes is not reassembled and passes through unmodified.
type hostRewriter struct {
	dst      io.Writer
	host     []byte
	replaced bool
}

func newHostRewriter(dst io.Writer, host string) *hostRewriter {
	return &hostRewriter{dst: dst, host: []byte(host)}
}

func (w *hostRewriter) Write(p []byte) (int, error) {
	if w.replaced {
		return w.dst.Write(p)
	}
	m := hostHeaderPattern.FindSubmatchIndex(p)
	if m == nil {
		return w.dst.Write(p)
	}
	w.replaced = true

	out := make([]byte, 0, len(p)-(m[5]-m[4])+len(w.host))
	out = append(out, p[:m[4]]...)
	out = append(out, w.host...)
	out = append(out, p[m[5]:]...)
	if _, err := w.dst.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}
