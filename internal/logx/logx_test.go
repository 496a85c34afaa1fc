package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"pkt.systems/pslog"
)

func newCaptureLogger(capture *logCapture) pslog.Logger {
	return pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		MinLevel:      pslog.InfoLevel,
		VerboseFields: true,
	})
}

func TestWithChannelAddsField(t *testing.T) {
	capture := &logCapture{}
	logger := newCaptureLogger(capture)
	ctx := pslog.ContextWithLogger(context.Background(), logger)
	WithChannel(ctx, "/cmd_vel").Info("hello")

	entry := capture.firstEntry(t)
	if entry["channel"] != "/cmd_vel" {
		t.Fatalf("expected channel field, got %+v", entry)
	}
}

func TestWithChannelSkipsDuplicateField(t *testing.T) {
	capture := &logCapture{}
	logger := newCaptureLogger(capture)
	ctx := ContextWithChannelLogger(context.Background(), logger, "/odom")
	WithChannel(ctx, "/odom").Info("hello")

	entry := capture.firstEntry(t)
	if entry["channel"] != "/odom" {
		t.Fatalf("expected channel field, got %+v", entry)
	}
}

func TestWithChannelEmptyIsNoop(t *testing.T) {
	capture := &logCapture{}
	logger := newCaptureLogger(capture)
	ctx := pslog.ContextWithLogger(context.Background(), logger)
	WithChannel(ctx, "").Info("hello")

	entry := capture.firstEntry(t)
	if _, ok := entry["channel"]; ok {
		t.Fatalf("did not expect channel field, got %+v", entry)
	}
}

type logCapture struct {
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	return c.buf.Write(p)
}

func (c *logCapture) firstEntry(t *testing.T) map[string]any {
	t.Helper()
	data := c.buf.Bytes()
	idx := bytes.IndexByte(data, '\n')
	if idx == -1 {
		idx = len(data)
	}
	line := bytes.TrimSpace(data[:idx])
	entry := map[string]any{}
	if err := json.Unmarshal(line, &entry); err != nil {
		t.Fatalf("parse log entry: %v", err)
	}
	return entry
}
