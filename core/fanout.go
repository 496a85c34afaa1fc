package core

import (
	"pkt.systems/echowave/schema"
	"pkt.systems/pslog"
)

// Fanout combines sinks into one. Nil sinks are skipped.
func Fanout(sinks ...EventSink) EventSink {
	return fanoutSink{sinks: sinks}
}

type fanoutSink struct {
	sinks []EventSink
}

func (f fanoutSink) OnSample(event schema.SampleEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnSample(event)
	}
}

func (f fanoutSink) OnLog(event schema.LogEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnLog(event)
	}
}

func (f fanoutSink) OnSubscription(event schema.SubscriptionEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnSubscription(event)
	}
}

func (f fanoutSink) OnConfig(event schema.ConfigEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnConfig(event)
	}
}

// NewLoggingSink traces service events through the logger. Sample and
// log events are trace-level; lifecycle transitions log at info.
func NewLoggingSink(logger pslog.Logger) EventSink {
	return loggingSink{log: logger}
}

type loggingSink struct {
	log pslog.Logger
}

func (s loggingSink) OnSample(event schema.SampleEvent) {
	if s.log == nil {
		return
	}
	s.log.Trace("sample", "channel", event.Channel, "t", event.Sample.T, "v", event.Sample.V)
}

func (s loggingSink) OnLog(event schema.LogEvent) {
	if s.log == nil {
		return
	}
	s.log.Trace("scrollback", "channel", event.Channel, "lines", len(event.Lines))
}

func (s loggingSink) OnSubscription(event schema.SubscriptionEvent) {
	if s.log == nil {
		return
	}
	if event.Message != "" {
		s.log.Info("subscription", "channel", event.Channel, "state", event.State, "message", event.Message)
		return
	}
	s.log.Info("subscription", "channel", event.Channel, "state", event.State)
}

func (s loggingSink) OnConfig(event schema.ConfigEvent) {
	if s.log == nil {
		return
	}
	s.log.Info("waveform config", "field_path", event.Config.FieldPath,
		"max_points", event.Config.MaxPoints, "throttle_ms", event.Config.ThrottleMs)
}
