package core

import "pkt.systems/echowave/schema"

// EventSink receives presentation-facing events from the core
// service. Implementations must not block.
type EventSink interface {
	OnSample(event schema.SampleEvent)
	OnLog(event schema.LogEvent)
	OnSubscription(event schema.SubscriptionEvent)
	OnConfig(event schema.ConfigEvent)
}
