package schema

// ActivateRequest asks for an echo subscription on a channel.
type ActivateRequest struct {
	Channel ChannelID
}

// ActivateResponse reports the subscription state after activation.
type ActivateResponse struct {
	Channel ChannelID
	State   SubscriptionState
}

// DeactivateRequest asks to stop a channel's subscription. The sample
// buffer is retained so the last-seen waveform stays renderable.
type DeactivateRequest struct {
	Channel ChannelID
}

// DeactivateResponse reports the subscription state after the stop
// request was issued.
type DeactivateResponse struct {
	Channel ChannelID
	State   SubscriptionState
}

// ForgetRequest removes a channel from tracking and drops its buffer.
type ForgetRequest struct {
	Channel ChannelID
}

// ForgetResponse acknowledges a forget.
type ForgetResponse struct {
	Channel ChannelID
}

// ListChannelsRequest asks for the discoverable channel list.
type ListChannelsRequest struct{}

// ListChannelsResponse carries the discoverable channels.
type ListChannelsResponse struct {
	Channels []ChannelInfo
}

// SetConfigRequest replaces the waveform config snapshot.
type SetConfigRequest struct {
	Config WaveformConfig
}

// SetConfigResponse echoes the normalized config now in effect.
type SetConfigResponse struct {
	Config WaveformConfig
}

// SnapshotRequest asks for the current renderable state.
type SnapshotRequest struct {
	// LogLines limits scrollback lines per channel; 0 means all.
	LogLines int
}

// SnapshotResponse is the current renderable state of all tracked
// channels, active or previously active.
type SnapshotResponse struct {
	Config   WaveformConfig
	Channels []ChannelSnapshot
}
