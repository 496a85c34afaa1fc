package schema

import "errors"

var (
	// ErrInvalidChannel indicates an empty or malformed channel name.
	ErrInvalidChannel = errors.New("invalid channel")
	// ErrChannelNotFound indicates the channel is not tracked.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrNotActive indicates the channel has no live subscription.
	ErrNotActive = errors.New("channel not active")
	// ErrRunnerUnavailable indicates no process host is configured.
	ErrRunnerUnavailable = errors.New("runner not configured")
)
