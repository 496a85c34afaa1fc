package schema

// StreamKind identifies which process pipe produced a chunk.
type StreamKind string

const (
	// StreamPrimary is the process standard output.
	StreamPrimary StreamKind = "stdout"
	// StreamDiagnostic is the process standard error.
	StreamDiagnostic StreamKind = "stderr"
)

// ProcEventType is the kind of a process-host delivery.
type ProcEventType string

const (
	// ProcChunk carries raw bytes from one of the process pipes.
	ProcChunk ProcEventType = "chunk"
	// ProcExit reports an observed process exit.
	ProcExit ProcEventType = "exit"
)

// ProcEvent is one delivery from the process host. Chunk events for a
// given subscription are delivered in arrival order.
type ProcEvent struct {
	Type   ProcEventType
	Stream StreamKind
	Data   []byte
	// ExitCode and Signal are set on ProcExit events.
	ExitCode int
	Signal   string
}

// SampleEvent announces one extracted sample for a channel.
type SampleEvent struct {
	Channel ChannelID
	Sample  Sample
}

// LogEvent carries decoded text lines for a channel's scrollback.
type LogEvent struct {
	Channel ChannelID
	Lines   []string
}

// SubscriptionEvent announces a subscription state change.
type SubscriptionEvent struct {
	Channel ChannelID
	State   SubscriptionState
	// Message carries a human-actionable description for errored or
	// unconfirmed-stop transitions.
	Message string
}

// ConfigEvent echoes the currently applied waveform config.
type ConfigEvent struct {
	Config WaveformConfig
}
