// Package termview renders the waveform and scrollback of the active
// channel to an ANSI terminal. Drawing is driven by the throttle
// scheduler; the view pulls a fresh service snapshot for every frame,
// so dropped events only cost intermediate frames, never correctness.
package termview

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"pkt.systems/echowave/core"
	"pkt.systems/echowave/internal/eventbus"
	"pkt.systems/echowave/internal/throttle"
	"pkt.systems/echowave/schema"
	"pkt.systems/pslog"
)

const (
	defaultWidth   = 100
	defaultHeight  = 16
	defaultLogRows = 8
)

// Options configures a View.
type Options struct {
	Service  core.Service
	Events   <-chan eventbus.Event
	Out      io.Writer
	Logger   pslog.Logger
	Width    int
	Height   int
	LogRows  int
	Throttle time.Duration
}

// View is one attached terminal presentation.
type View struct {
	service   core.Service
	events    <-chan eventbus.Event
	out       io.Writer
	log       pslog.Logger
	width     int
	height    int
	logRows   int
	scheduler *throttle.Scheduler

	mu    sync.Mutex
	focus schema.ChannelID
}

// New constructs a View.
func New(opts Options) (*View, error) {
	if opts.Service == nil {
		return nil, fmt.Errorf("termview: service is required")
	}
	if opts.Out == nil {
		return nil, fmt.Errorf("termview: output writer is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	v := &View{
		service: opts.Service,
		events:  opts.Events,
		out:     opts.Out,
		log:     logger,
		width:   opts.Width,
		height:  opts.Height,
		logRows: opts.LogRows,
	}
	if v.width <= 0 {
		v.width = defaultWidth
	}
	if v.height <= 0 {
		v.height = defaultHeight
	}
	if v.logRows <= 0 {
		v.logRows = defaultLogRows
	}
	v.scheduler = throttle.New(opts.Throttle, v.draw)
	return v, nil
}

// Focus switches the charted channel. An empty channel means the
// first active one.
func (v *View) Focus(channel schema.ChannelID) {
	v.mu.Lock()
	v.focus = channel
	v.mu.Unlock()
	v.scheduler.Request()
}

// Run consumes events until the context ends. It draws an initial
// frame immediately.
func (v *View) Run(ctx context.Context) error {
	defer v.scheduler.Close()
	v.scheduler.Request()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-v.events:
			if !ok {
				v.log.Debug("termview event stream closed")
				return nil
			}
			v.handleEvent(event)
		}
	}
}

func (v *View) handleEvent(event eventbus.Event) {
	switch event.Type {
	case eventbus.EventConfig:
		v.scheduler.SetInterval(time.Duration(event.Config.Config.ThrottleMs) * time.Millisecond)
		v.scheduler.Request()
	case eventbus.EventSample, eventbus.EventLog, eventbus.EventSubscription:
		v.scheduler.Request()
	}
}

// draw renders one frame from a fresh snapshot.
func (v *View) draw() {
	snap, err := v.service.Snapshot(context.Background(), schema.SnapshotRequest{LogLines: v.logRows})
	if err != nil {
		v.log.Warn("termview snapshot failed", "err", err)
		return
	}
	frame := v.renderFrame(snap)
	if _, err := io.WriteString(v.out, frame); err != nil {
		v.log.Warn("termview write failed", "err", err)
	}
}

func (v *View) renderFrame(snap schema.SnapshotResponse) string {
	v.mu.Lock()
	focus := v.focus
	v.mu.Unlock()

	var b strings.Builder
	b.WriteString("\x1b[2J\x1b[H")

	selected := selectChannel(snap.Channels, focus)
	b.WriteString(renderStatusLine(snap, selected))
	b.WriteString("\r\n")

	chartHeight := v.height - v.logRows - 3
	if chartHeight < 2 {
		chartHeight = 2
	}
	var samples []schema.Sample
	var logLines []string
	if selected != nil {
		samples = selected.Samples
		logLines = selected.Log
	}
	for _, line := range renderChart(samples, v.width, chartHeight) {
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	b.WriteString(strings.Repeat("-", min(v.width, 80)))
	b.WriteString("\r\n")
	start := 0
	if len(logLines) > v.logRows {
		start = len(logLines) - v.logRows
	}
	for _, line := range logLines[start:] {
		b.WriteString(clampLine(line, v.width))
		b.WriteString("\r\n")
	}
	return b.String()
}

func selectChannel(channels []schema.ChannelSnapshot, focus schema.ChannelID) *schema.ChannelSnapshot {
	for i := range channels {
		if focus != "" && channels[i].Channel == focus {
			return &channels[i]
		}
	}
	if focus != "" {
		return nil
	}
	for i := range channels {
		if channels[i].Active {
			return &channels[i]
		}
	}
	if len(channels) > 0 {
		return &channels[0]
	}
	return nil
}

func renderStatusLine(snap schema.SnapshotResponse, selected *schema.ChannelSnapshot) string {
	if selected == nil {
		return "echowave: no channels"
	}
	label := string(selected.Channel)
	if selected.Type != "" {
		label += " [" + selected.Type + "]"
	}
	field := snap.Config.FieldPath
	if field == "" {
		field = "auto"
	}
	return fmt.Sprintf("echowave: %s  state=%s  field=%s  points=%d",
		label, selected.State, field, len(selected.Samples))
}

func clampLine(line string, width int) string {
	runes := []rune(line)
	if len(runes) <= width {
		return line
	}
	return string(runes[:width])
}
