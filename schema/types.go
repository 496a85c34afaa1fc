package schema

// ChannelID identifies a subscribable channel.
type ChannelID string

// ChannelInfo describes one discoverable channel.
type ChannelInfo struct {
	Name ChannelID
	// Type is an optional type label reported by the channel source.
	Type string
}

// SubscriptionState tracks the lifecycle of a channel subscription.
type SubscriptionState string

const (
	// SubscriptionStarting indicates the echo process has been requested.
	SubscriptionStarting SubscriptionState = "starting"
	// SubscriptionRunning indicates the echo process spawned successfully.
	SubscriptionRunning SubscriptionState = "running"
	// SubscriptionStopping indicates a stop has been requested.
	SubscriptionStopping SubscriptionState = "stopping"
	// SubscriptionStopped indicates process exit was observed.
	SubscriptionStopped SubscriptionState = "stopped"
	// SubscriptionErrored indicates a spawn failure or unexpected exit.
	SubscriptionErrored SubscriptionState = "errored"
)

// Terminal reports whether the state admits no further transitions.
func (s SubscriptionState) Terminal() bool {
	return s == SubscriptionStopped || s == SubscriptionErrored
}

// Sample is one waveform point: timestamp in float seconds and value.
// Samples are immutable once created.
type Sample struct {
	T float64
	V float64
}

// ChannelSnapshot is a presentation-friendly view of one channel.
type ChannelSnapshot struct {
	Channel ChannelID
	Type    string
	State   SubscriptionState
	Active  bool
	Samples []Sample
	Log     []string
}
