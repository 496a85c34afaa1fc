// Package eventbus fans core service events out to attached views.
package eventbus

import (
	"context"
	"sync"

	"pkt.systems/echowave/schema"
	"pkt.systems/pslog"
)

// EventType identifies the event payload.
type EventType string

const (
	// EventSample carries one extracted waveform sample.
	EventSample EventType = "sample"
	// EventLog carries decoded scrollback lines for a channel.
	EventLog EventType = "log"
	// EventSubscription carries subscription lifecycle updates.
	EventSubscription EventType = "subscription"
	// EventConfig echoes the applied waveform config.
	EventConfig EventType = "config"
)

// Event represents a view-facing event emitted by the core service.
type Event struct {
	Type         EventType
	Sample       schema.SampleEvent
	Log          schema.LogEvent
	Subscription schema.SubscriptionEvent
	Config       schema.ConfigEvent
}

// Bus fans events out to subscribers. Publishing never blocks; slow
// subscribers drop events.
type Bus struct {
	mu    sync.Mutex
	subs  map[chan Event]struct{}
	log   pslog.Logger
	depth int
}

// New constructs a Bus.
func New(logger pslog.Logger) *Bus {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Bus{
		subs:  make(map[chan Event]struct{}),
		log:   logger,
		depth: 256,
	}
}

// Subscribe registers a subscriber and returns a channel + cancel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	if b == nil {
		return nil, func() {}
	}
	ch := make(chan Event, b.depth)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	count := len(b.subs)
	b.mu.Unlock()
	if b.log != nil {
		b.log.Debug("eventbus subscribe", "subs", count)
	}
	return ch, func() {
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
		close(ch)
		if b.log != nil {
			b.log.Debug("eventbus unsubscribe")
		}
	}
}

// OnSample publishes a sample event.
func (b *Bus) OnSample(event schema.SampleEvent) {
	b.publish(Event{Type: EventSample, Sample: event})
}

// OnLog publishes a log event.
func (b *Bus) OnLog(event schema.LogEvent) {
	b.publish(Event{Type: EventLog, Log: event})
}

// OnSubscription publishes a subscription event.
func (b *Bus) OnSubscription(event schema.SubscriptionEvent) {
	b.publish(Event{Type: EventSubscription, Subscription: event})
}

// OnConfig publishes a config event.
func (b *Bus) OnConfig(event schema.ConfigEvent) {
	b.publish(Event{Type: EventConfig, Config: event})
}

func (b *Bus) publish(event Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	subs := make([]chan Event, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()
	if len(subs) == 0 {
		return
	}
	dropped := 0
	for _, sub := range subs {
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	if dropped > 0 && b.log != nil {
		b.log.Trace("eventbus dropped", "count", dropped)
	}
}
