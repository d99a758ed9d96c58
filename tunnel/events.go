package tunnel

import (
	"context"

	"github.com/rs/zerolog/log"
)

// EventSink is used to notify on tunnel connection state transitions
type EventSink interface {
	// OnConnecting is called when a session starts dialing the remote
	OnConnecting(context.Context)
	// OnConnected is called when both legs of a session are established
	// and splicing is about to begin
	OnConnected(context.Context)
	// OnDisconnected is called when a splicing session ends
	OnDisconnected(context.Context, error)
}

// DiscardEvents returns an event sink that discards all events.
func DiscardEvents() EventSink {
	return discardEvents{}
}

type discardEvents struct{}

func (discardEvents) OnConnecting(_ context.Context) {}

func (discardEvents) OnConnected(_ context.Context) {}

func (discardEvents) OnDisconnected(_ context.Context, _ error) {}

type logEvents struct{}

// LogEvents returns an event sink that logs all events.
func LogEvents() EventSink {
	return logEvents{}
}

func (logEvents) OnConnecting(ctx context.Context) {
	log.Ctx(ctx).Debug().Msg("connecting")
}

func (logEvents) OnConnected(ctx context.Context) {
	log.Ctx(ctx).Info().Msg("connected")
}

func (logEvents) OnDisconnected(ctx context.Context, err error) {
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("disconnected")
		return
	}
	log.Ctx(ctx).Info().Msg("disconnected")
}
