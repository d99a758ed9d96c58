package tunnel

import (
	"context"
	"fmt"
	"io"
	"net"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RequestInfo describes the request line of an HTTP request observed on a
// tunnel connection.
type RequestInfo struct {
	Method string
	Path   string
}

var requestLinePattern = regexp.MustCompile(`^(\w+) (\S+)`)

// sessionPhase tracks how far a session got, for logging.
type sessionPhase string

const (
	phaseDial       sessionPhase = "dial"
	phaseAuth       sessionPhase = "auth"
	phaseAwaitReady sessionPhase = "await-ready"
	phaseLocalDial  sessionPhase = "local-dial"
	phaseSplicing   sessionPhase = "splicing"
)

// runSession drives one tunnel connection through its full lifecycle:
// dial the remote, authenticate, wait for READY, open the local leg and
// splice bytes both ways until either side ends. Whatever the outcome,
// no socket stays open after it returns.
func (tun *Tunnel) runSession(ctx context.Context, eventSink EventSink) error {
	logger := log.Ctx(ctx).With().Str("session-id", uuid.NewString()).Logger()
	ctx = logger.WithContext(ctx)

	phase := phaseDial
	err := tun.connectAndSplice(ctx, eventSink, &phase)
	if err != nil && ctx.Err() == nil {
		logger.Debug().Str("phase", string(phase)).Err(err).Msg("session failed")
	}
	return err
}

func (tun *Tunnel) connectAndSplice(ctx context.Context, eventSink EventSink, phase *sessionPhase) error {
	eventSink.OnConnecting(ctx)

	dialer := &net.Dialer{KeepAlive: 30 * time.Second}
	remote, err := dialer.DialContext(ctx, "tcp", tun.cfg.remoteAddr())
	if err != nil {
		return labelRefused(fmt.Errorf("failed to establish connection to remote: %w", err))
	}
	defer func() { _ = remote.Close() }()

	// unblock reads on cancellation by closing the socket
	stop := make(chan struct{})
	defer close(stop)
	if done := ctx.Done(); done != nil {
		go func() {
			select {
			case <-done:
				_ = remote.Close()
			case <-stop:
			}
		}()
	}

	*phase = phaseAuth
	if err := authenticate(remote, tun.cfg.secretKey, tun.cfg.authTimeout); err != nil {
		return err
	}

	*phase = phaseAwaitReady
	residue, err := awaitReady(remote)
	if err != nil {
		return err
	}

	*phase = phaseLocalDial
	local, err := dialLocal(ctx, tun.cfg.localHost, tun.cfg.localPort, tun.cfg.localTLS)
	if err != nil {
		return err
	}
	defer func() { _ = local.Close() }()

	*phase = phaseSplicing
	eventSink.OnConnected(ctx)

	var toLocal io.Writer = local
	if tun.cfg.rewriteHost() {
		toLocal = newHostRewriter(toLocal, tun.cfg.localHost)
	}
	if tun.cfg.onRequest != nil {
		toLocal = &requestObserver{dst: toLocal, observe: tun.cfg.onRequest}
	}

	// bytes received in the same chunk as READY lead the stream
	if len(residue) > 0 {
		if _, err := toLocal.Write(residue); err != nil {
			err = fmt.Errorf("failed to deliver buffered bytes to local: %w", err)
			eventSink.OnDisconnected(ctx, err)
			return err
		}
	}

	remoteDone := make(chan error, 1)
	localDone := make(chan error, 1)
	go func() {
		_, err := io.Copy(toLocal, remote)
		remoteDone <- err
	}()
	go func() {
		_, err := io.Copy(remote, local)
		localDone <- err
	}()

	for {
		select {
		case err = <-remoteDone:
			// remote EOF ends the session normally; a write error here
			// means the local side failed mid-splice
			eventSink.OnDisconnected(ctx, err)
			return err
		case lerr := <-localDone:
			if lerr != nil {
				err = fmt.Errorf("local connection error: %w", lerr)
				eventSink.OnDisconnected(ctx, err)
				return err
			}
			// the local side closing on its own does not end the
			// session; the remote decides when it is over
			log.Ctx(ctx).Debug().Msg("local connection closed")
			localDone = nil
		case <-ctx.Done():
			eventSink.OnDisconnected(ctx, nil)
			return nil
		}
	}
}

// A requestObserver reports HTTP request lines seen at the head of chunks
// received from the remote. It never alters or consumes the stream.
type requestObserver struct {
	dst     io.Writer
	observe func(RequestInfo)
}

func (w *requestObserver) Write(p []byte) (int, error) {
	if m := requestLinePattern.FindSubmatch(p); m != nil {
		w.observe(RequestInfo{Method: string(m[1]), Path: string(m[2])})
	}
	return w.dst.Write(p)
}
