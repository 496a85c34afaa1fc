package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"pkt.systems/echowave/internal/logx"
	"pkt.systems/echowave/internal/record"
	"pkt.systems/echowave/internal/textdec"
	"pkt.systems/echowave/schema"
	"pkt.systems/pslog"
)

// Service is the transport-agnostic API for managing channel echo
// subscriptions and their waveforms.
type Service interface {
	Activate(ctx context.Context, req schema.ActivateRequest) (schema.ActivateResponse, error)
	Deactivate(ctx context.Context, req schema.DeactivateRequest) (schema.DeactivateResponse, error)
	Forget(ctx context.Context, req schema.ForgetRequest) (schema.ForgetResponse, error)
	ListChannels(ctx context.Context, req schema.ListChannelsRequest) (schema.ListChannelsResponse, error)
	SetConfig(ctx context.Context, req schema.SetConfigRequest) (schema.SetConfigResponse, error)
	Snapshot(ctx context.Context, req schema.SnapshotRequest) (schema.SnapshotResponse, error)
}

// Stop protocol grace periods: interrupt first, then escalate.
const (
	interruptGrace = 1500 * time.Millisecond
	killGrace      = 1000 * time.Millisecond
)

// stopWait is a seam for tests to avoid real stop-protocol waits.
var stopWait = func(done <-chan struct{}, d time.Duration) bool {
	if done == nil {
		time.Sleep(d)
		return false
	}
	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}

// channelState is everything the service tracks per channel. The
// sample and log buffers outlive the subscription so the last-seen
// waveform stays renderable after deactivation.
type channelState struct {
	info    schema.ChannelInfo
	sub     *subscription
	samples *sampleBuffer
	log     *logBuffer
}

type service struct {
	cfg      schema.ServiceConfig
	runner   Runner
	sink     EventSink
	logger   pslog.Logger
	encoding textdec.Encoding

	mu       sync.Mutex
	channels map[schema.ChannelID]*channelState
}

// NewService constructs the core service implementation.
func NewService(cfg schema.ServiceConfig, deps ServiceDeps) (Service, error) {
	normalized, err := schema.NormalizeServiceConfig(cfg)
	if err != nil {
		return nil, err
	}
	encoding, err := textdec.ParseEncoding(deps.Encoding)
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &service{
		cfg:      normalized,
		runner:   deps.Runner,
		sink:     deps.EventSink,
		logger:   logger,
		encoding: encoding,
		channels: make(map[schema.ChannelID]*channelState),
	}, nil
}

func (s *service) Activate(ctx context.Context, req schema.ActivateRequest) (schema.ActivateResponse, error) {
	channel, err := normalizeChannel(req.Channel)
	if err != nil {
		return schema.ActivateResponse{}, err
	}
	if s.runner == nil {
		return schema.ActivateResponse{}, schema.ErrRunnerUnavailable
	}
	log := logx.WithChannel(ctx, channel)

	s.mu.Lock()
	ch := s.getOrCreateLocked(channel)
	if existing := ch.sub; existing != nil && !existing.state.Terminal() {
		state := existing.state
		s.mu.Unlock()
		log.Debug("echo activate ignored, subscription live", "state", state)
		return schema.ActivateResponse{Channel: channel, State: state}, nil
	}
	sub := newSubscription(channel, s.encoding)
	ch.sub = sub
	s.mu.Unlock()

	log.Info("echo subscription starting")
	s.emitSubscription(schema.SubscriptionEvent{Channel: channel, State: schema.SubscriptionStarting})

	runCtx, cancel := context.WithCancel(logx.ContextWithChannelLogger(context.Background(), s.logger, channel))
	handle, err := s.runner.Subscribe(runCtx, SubscribeRequest{Channel: channel})
	if err != nil {
		cancel()
		s.mu.Lock()
		sub.state = schema.SubscriptionErrored
		sub.release()
		s.mu.Unlock()
		log.Warn("echo spawn failed", "err", err)
		message := fmt.Sprintf("failed to start echo for %s: %v", channel, err)
		s.emitSubscription(schema.SubscriptionEvent{Channel: channel, State: schema.SubscriptionErrored, Message: message})
		return schema.ActivateResponse{}, fmt.Errorf("start echo for %s: %w", channel, err)
	}

	s.mu.Lock()
	sub.handle = handle
	sub.cancel = cancel
	sub.state = schema.SubscriptionRunning
	s.mu.Unlock()
	log.Info("echo subscription running")
	s.emitSubscription(schema.SubscriptionEvent{Channel: channel, State: schema.SubscriptionRunning})

	go s.consumeEvents(runCtx, channel, sub, handle)

	return schema.ActivateResponse{Channel: channel, State: schema.SubscriptionRunning}, nil
}

func (s *service) Deactivate(ctx context.Context, req schema.DeactivateRequest) (schema.DeactivateResponse, error) {
	channel, err := normalizeChannel(req.Channel)
	if err != nil {
		return schema.DeactivateResponse{}, err
	}
	log := logx.WithChannel(ctx, channel)

	s.mu.Lock()
	ch := s.channels[channel]
	if ch == nil || ch.sub == nil || ch.sub.state.Terminal() {
		s.mu.Unlock()
		return schema.DeactivateResponse{}, schema.ErrNotActive
	}
	sub := ch.sub
	if sub.state == schema.SubscriptionStopping {
		s.mu.Unlock()
		log.Debug("echo deactivate ignored, stop in progress")
		return schema.DeactivateResponse{Channel: channel, State: schema.SubscriptionStopping}, nil
	}
	sub.state = schema.SubscriptionStopping
	handle := sub.handle
	cancel := sub.cancel
	s.mu.Unlock()

	log.Info("echo stop requested")
	s.emitSubscription(schema.SubscriptionEvent{Channel: channel, State: schema.SubscriptionStopping})
	go s.stopSubscription(log, channel, handle, cancel)

	return schema.DeactivateResponse{Channel: channel, State: schema.SubscriptionStopping}, nil
}

// stopSubscription runs the bounded, escalating stop protocol:
// interrupt, wait, kill, wait. If the process still cannot be
// confirmed dead the subscription stays in Stopping and a warning is
// surfaced; it is never silently marked Stopped.
func (s *service) stopSubscription(log pslog.Logger, channel schema.ChannelID, handle RunHandle, cancel context.CancelFunc) {
	defer func() {
		if cancel != nil {
			cancel()
		}
	}()
	if handle == nil {
		return
	}
	signalCtx := context.Background()
	if err := handle.Signal(signalCtx, ProcessSignalINT); err != nil {
		log.Warn("echo stop signal failed", "signal", ProcessSignalINT, "err", err)
	}
	if stopWait(handle.Done(), interruptGrace) {
		return
	}
	log.Warn("echo process ignored interrupt, escalating", "signal", ProcessSignalKILL)
	if err := handle.Signal(signalCtx, ProcessSignalKILL); err != nil {
		log.Warn("echo stop signal failed", "signal", ProcessSignalKILL, "err", err)
	}
	if stopWait(handle.Done(), killGrace) {
		return
	}
	message := fmt.Sprintf("echo process for %s could not be confirmed stopped", channel)
	log.Warn("echo stop unconfirmed after escalation")
	s.emitSubscription(schema.SubscriptionEvent{Channel: channel, State: schema.SubscriptionStopping, Message: message})
}

func (s *service) Forget(ctx context.Context, req schema.ForgetRequest) (schema.ForgetResponse, error) {
	channel, err := normalizeChannel(req.Channel)
	if err != nil {
		return schema.ForgetResponse{}, err
	}
	log := logx.WithChannel(ctx, channel)

	s.mu.Lock()
	ch := s.channels[channel]
	if ch == nil {
		s.mu.Unlock()
		return schema.ForgetResponse{}, schema.ErrChannelNotFound
	}
	sub := ch.sub
	delete(s.channels, channel)
	live := sub != nil && !sub.state.Terminal()
	var handle RunHandle
	var cancel context.CancelFunc
	if live {
		sub.state = schema.SubscriptionStopping
		handle = sub.handle
		cancel = sub.cancel
	}
	s.mu.Unlock()

	log.Info("channel forgotten", "live", live)
	if live {
		go s.stopSubscription(log, channel, handle, cancel)
	}
	return schema.ForgetResponse{Channel: channel}, nil
}

func (s *service) ListChannels(ctx context.Context, _ schema.ListChannelsRequest) (schema.ListChannelsResponse, error) {
	if s.runner == nil {
		return schema.ListChannelsResponse{}, schema.ErrRunnerUnavailable
	}
	infos, err := s.runner.List(ctx)
	if err != nil {
		return schema.ListChannelsResponse{}, fmt.Errorf("list channels: %w", err)
	}
	s.mu.Lock()
	for _, info := range infos {
		if ch := s.channels[info.Name]; ch != nil {
			ch.info = info
		}
	}
	s.mu.Unlock()
	return schema.ListChannelsResponse{Channels: infos}, nil
}

func (s *service) SetConfig(ctx context.Context, req schema.SetConfigRequest) (schema.SetConfigResponse, error) {
	cfg, err := schema.NormalizeWaveformConfig(req.Config)
	if err != nil {
		return schema.SetConfigResponse{}, err
	}
	s.mu.Lock()
	s.cfg.Waveform = cfg
	for _, ch := range s.channels {
		ch.samples.SetCapacity(cfg.MaxPoints)
	}
	s.mu.Unlock()
	pslog.Ctx(ctx).Info("waveform config applied",
		"field_path", cfg.FieldPath, "max_points", cfg.MaxPoints, "throttle_ms", cfg.ThrottleMs)
	if s.sink != nil {
		s.sink.OnConfig(schema.ConfigEvent{Config: cfg})
	}
	return schema.SetConfigResponse{Config: cfg}, nil
}

func (s *service) Snapshot(_ context.Context, req schema.SnapshotRequest) (schema.SnapshotResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp := schema.SnapshotResponse{Config: s.cfg.Waveform}
	for channel, ch := range s.channels {
		snapshot := schema.ChannelSnapshot{
			Channel: channel,
			Type:    ch.info.Type,
			Samples: ch.samples.Snapshot(),
			Log:     ch.log.Snapshot(req.LogLines),
		}
		if ch.sub != nil {
			snapshot.State = ch.sub.state
			snapshot.Active = !ch.sub.state.Terminal()
		}
		resp.Channels = append(resp.Channels, snapshot)
	}
	sort.Slice(resp.Channels, func(i, j int) bool {
		return resp.Channels[i].Channel < resp.Channels[j].Channel
	})
	return resp, nil
}

// consumeEvents is the per-subscription pump: chunk events flow
// through decoder, parser, and extractor into the channel's buffers,
// strictly in arrival order. It runs until the stream ends and then
// drives the terminal state transition.
func (s *service) consumeEvents(ctx context.Context, channel schema.ChannelID, sub *subscription, handle RunHandle) {
	log := logx.WithChannel(ctx, channel)
	stream := handle.Events()
	sawExit := false
	exitCode := 0
	exitSignal := ""
	for {
		event, err := stream.Next(ctx)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
				log.Warn("echo stream error", "err", err)
			}
			break
		}
		switch event.Type {
		case schema.ProcChunk:
			s.handleChunk(log, channel, sub, event)
		case schema.ProcExit:
			sawExit = true
			exitCode = event.ExitCode
			exitSignal = event.Signal
		}
	}
	s.flushPipeline(log, channel, sub)
	if err := handle.Close(); err != nil {
		log.Warn("echo stream close failed", "err", err)
	}

	s.mu.Lock()
	prev := sub.state
	var emit *schema.SubscriptionEvent
	switch {
	case sawExit && prev == schema.SubscriptionStopping:
		sub.state = schema.SubscriptionStopped
		sub.release()
		emit = &schema.SubscriptionEvent{Channel: channel, State: schema.SubscriptionStopped}
	case sawExit:
		sub.state = schema.SubscriptionErrored
		sub.release()
		message := fmt.Sprintf("echo process for %s exited unexpectedly (exit code %d)", channel, exitCode)
		if exitSignal != "" {
			message = fmt.Sprintf("echo process for %s terminated by signal %s", channel, exitSignal)
		}
		emit = &schema.SubscriptionEvent{Channel: channel, State: schema.SubscriptionErrored, Message: message}
	default:
		// Stream ended without an observed exit; leave the state to
		// the stop protocol.
	}
	s.mu.Unlock()

	if emit != nil {
		if emit.State == schema.SubscriptionStopped {
			log.Info("echo subscription stopped", "exit_code", exitCode)
		} else {
			log.Warn("echo subscription errored", "exit_code", exitCode, "signal", exitSignal)
		}
		s.emitSubscription(*emit)
	}
}

// handleChunk advances the decode/parse/extract pipeline with one
// chunk. Only the primary stream feeds the waveform; diagnostic
// output is decoded for the scrollback log only.
func (s *service) handleChunk(log pslog.Logger, channel schema.ChannelID, sub *subscription, event schema.ProcEvent) {
	if sub.decoder == nil {
		return
	}
	if event.Stream == schema.StreamDiagnostic {
		text := sub.diagDecoder.Write(event.Data)
		s.appendLog(channel, completeLines(&sub.diagTail, text))
		return
	}
	text := sub.decoder.Write(event.Data)
	if text == "" {
		return
	}
	s.appendLog(channel, completeLines(&sub.logTail, text))
	s.extractRecords(log, channel, sub.parser.Feed(text))
}

// flushPipeline drains trailing decoder and parser state when the
// stream ends.
func (s *service) flushPipeline(log pslog.Logger, channel schema.ChannelID, sub *subscription) {
	if sub.decoder == nil {
		return
	}
	if text := sub.diagDecoder.End(); text != "" || sub.diagTail != "" {
		lines := completeLines(&sub.diagTail, text+"\n")
		s.appendLog(channel, lines)
	}
	text := sub.decoder.End()
	if text != "" {
		s.appendLog(channel, completeLines(&sub.logTail, text))
		s.extractRecords(log, channel, sub.parser.Feed(text))
	}
	if sub.logTail != "" {
		s.appendLog(channel, []string{sub.logTail})
		sub.logTail = ""
	}
	if sub.decoder.Degraded() {
		log.Debug("echo stream decoded with substitutions")
	}
}

func (s *service) extractRecords(log pslog.Logger, channel schema.ChannelID, records []record.Record) {
	if len(records) == 0 {
		return
	}
	now := time.Now()
	for _, rec := range records {
		s.mu.Lock()
		fieldPath := s.cfg.Waveform.FieldPath
		s.mu.Unlock()
		sample, ok := record.Extract(rec, fieldPath, now)
		if !ok {
			log.Trace("record yielded no sample", "fields", rec.Len())
			continue
		}
		s.mu.Lock()
		ch := s.channels[channel]
		if ch != nil {
			ch.samples.Append(sample)
		}
		s.mu.Unlock()
		if ch != nil && s.sink != nil {
			s.sink.OnSample(schema.SampleEvent{Channel: channel, Sample: sample})
		}
	}
}

func (s *service) appendLog(channel schema.ChannelID, lines []string) {
	if len(lines) == 0 {
		return
	}
	s.mu.Lock()
	ch := s.channels[channel]
	if ch != nil {
		ch.log.Append(lines...)
	}
	s.mu.Unlock()
	if ch != nil && s.sink != nil {
		s.sink.OnLog(schema.LogEvent{Channel: channel, Lines: lines})
	}
}

func (s *service) emitSubscription(event schema.SubscriptionEvent) {
	if s.sink != nil {
		s.sink.OnSubscription(event)
	}
}

func (s *service) getOrCreateLocked(channel schema.ChannelID) *channelState {
	ch := s.channels[channel]
	if ch == nil {
		ch = &channelState{
			info:    schema.ChannelInfo{Name: channel},
			samples: newSampleBuffer(s.cfg.Waveform.MaxPoints),
			log:     newLogBuffer(s.cfg.LogMaxLines),
		}
		s.channels[channel] = ch
	}
	return ch
}

func normalizeChannel(channel schema.ChannelID) (schema.ChannelID, error) {
	trimmed := strings.TrimSpace(string(channel))
	if trimmed == "" {
		return "", schema.ErrInvalidChannel
	}
	return schema.ChannelID(trimmed), nil
}
