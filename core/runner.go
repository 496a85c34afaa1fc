package core

import (
	"context"

	"pkt.systems/echowave/schema"
)

// Runner is the process host: it spawns one echo subprocess per
// channel subscription and lists discoverable channels. The core
// never constructs commands itself; it only consumes handles.
type Runner interface {
	Subscribe(ctx context.Context, req SubscribeRequest) (RunHandle, error)
	List(ctx context.Context) ([]schema.ChannelInfo, error)
}

// SubscribeRequest describes an echo subprocess invocation.
type SubscribeRequest struct {
	Channel schema.ChannelID
}

// RunHandle exposes a subscription's event stream and process
// lifecycle controls.
type RunHandle interface {
	Events() EventStream
	Signal(ctx context.Context, sig ProcessSignal) error
	// Done is closed once process exit has been observed.
	Done() <-chan struct{}
	Close() error
}

// EventStream yields process deliveries in arrival order. Next
// returns io.EOF after the final event.
type EventStream interface {
	Next(ctx context.Context) (schema.ProcEvent, error)
	Close() error
}

// ProcessSignal indicates which signal to send to the process.
type ProcessSignal string

const (
	// ProcessSignalINT requests a polite interrupt.
	ProcessSignalINT ProcessSignal = "INT"
	// ProcessSignalKILL requests an immediate kill.
	ProcessSignalKILL ProcessSignal = "KILL"
)
