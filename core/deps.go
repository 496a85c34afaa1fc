package core

import "pkt.systems/pslog"

// ServiceDeps captures dependencies for the core service.
type ServiceDeps struct {
	Runner    Runner
	EventSink EventSink
	Logger    pslog.Logger
	// Encoding forces the stream decoder's encoding; empty means
	// auto detection.
	Encoding string
}
