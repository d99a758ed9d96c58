// Package tunnel maintains a pool of authenticated TCP connections to a
// remote rendezvous endpoint, splicing each one into a connection to a
// local server.
//
// Every pooled connection runs a small line-oriented handshake first: an
// optional auth frame, PING/PONG liveness replies, then a READY marker
// after which the socket carries opaque application bytes.
package tunnel

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// A Tunnel supervises tunnel connections for one rendezvous endpoint.
type Tunnel struct {
	cfg      *config
	attempts []atomic.Int64
}

// New creates a new Tunnel.
func New(options ...Option) *Tunnel {
	return &Tunnel{cfg: getConfig(options...)}
}

// RunPool keeps count concurrent tunnel connections alive until ctx is
// canceled. Every slot restarts its connection unconditionally after it
// ends, however it ends; there is no attempt limit.
func (tun *Tunnel) RunPool(ctx context.Context, count int, eventSink EventSink) error {
	if count < 1 {
		count = 1
	}
	tun.attempts = make([]atomic.Int64, count)

	eg, ctx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		slot := i
		eg.Go(func() error {
			tun.runSlot(ctx, slot, eventSink)
			return nil
		})
	}
	return eg.Wait()
}

func (tun *Tunnel) runSlot(ctx context.Context, slot int, eventSink EventSink) {
	logger := log.Ctx(ctx).With().Int("slot", slot).Logger()
	ctx = logger.WithContext(ctx)

	for {
		attempt := tun.attempts[slot].Add(1)
		err := tun.runSession(ctx, eventSink)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logger.Warn().Err(err).Int64("attempt", attempt).Msg("tunnel connection failed, restarting")
		} else {
			logger.Debug().Int64("attempt", attempt).Msg("tunnel connection closed, restarting")
		}
	}
}

// Attempts reports how many sessions the given slot has started. It is
// safe to call while the pool runs.
func (tun *Tunnel) Attempts(slot int) int64 {
	if slot < 0 || slot >= len(tun.attempts) {
		return 0
	}
	return tun.attempts[slot].Load()
}
