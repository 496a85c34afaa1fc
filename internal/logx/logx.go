// Package logx binds channel identity to context loggers.
package logx

import (
	"context"

	"pkt.systems/echowave/schema"
	"pkt.systems/pslog"
)

type contextKey int

const channelKey contextKey = iota

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithChannel annotates the logger with the channel id if present.
func WithChannel(ctx context.Context, channel schema.ChannelID) pslog.Logger {
	log := pslog.Ctx(ctx)
	if channel != "" {
		if current, ok := ctx.Value(channelKey).(schema.ChannelID); ok && current == channel {
			return log
		}
		log = log.With("channel", channel)
	}
	return log
}

// ContextWithChannel stores the channel marker on the context for log
// de-duplication.
func ContextWithChannel(ctx context.Context, channel schema.ChannelID) context.Context {
	if ctx == nil || channel == "" {
		return ctx
	}
	return context.WithValue(ctx, channelKey, channel)
}

// ContextWithChannelLogger attaches the channel-annotated logger and
// marker to the context.
func ContextWithChannelLogger(ctx context.Context, log pslog.Logger, channel schema.ChannelID) context.Context {
	if channel != "" {
		log = log.With("channel", channel)
	}
	ctx = pslog.ContextWithLogger(ctx, log)
	return ContextWithChannel(ctx, channel)
}
