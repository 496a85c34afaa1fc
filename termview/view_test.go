package termview

import (
	"context"
	"strings"
	"testing"

	"pkt.systems/echowave/schema"
)

type stubService struct {
	snap schema.SnapshotResponse
}

func (s *stubService) Activate(context.Context, schema.ActivateRequest) (schema.ActivateResponse, error) {
	return schema.ActivateResponse{}, nil
}

func (s *stubService) Deactivate(context.Context, schema.DeactivateRequest) (schema.DeactivateResponse, error) {
	return schema.DeactivateResponse{}, nil
}

func (s *stubService) Forget(context.Context, schema.ForgetRequest) (schema.ForgetResponse, error) {
	return schema.ForgetResponse{}, nil
}

func (s *stubService) ListChannels(context.Context, schema.ListChannelsRequest) (schema.ListChannelsResponse, error) {
	return schema.ListChannelsResponse{}, nil
}

func (s *stubService) SetConfig(context.Context, schema.SetConfigRequest) (schema.SetConfigResponse, error) {
	return schema.SetConfigResponse{}, nil
}

func (s *stubService) Snapshot(context.Context, schema.SnapshotRequest) (schema.SnapshotResponse, error) {
	return s.snap, nil
}

func TestRenderFramePicksActiveChannel(t *testing.T) {
	svc := &stubService{snap: schema.SnapshotResponse{
		Config: schema.WaveformConfig{FieldPath: "data"},
		Channels: []schema.ChannelSnapshot{
			{Channel: "/idle", State: schema.SubscriptionStopped},
			{
				Channel: "/chatter",
				Type:    "std_msgs/msg/String",
				State:   schema.SubscriptionRunning,
				Active:  true,
				Samples: []schema.Sample{{T: 0, V: 1}, {T: 1, V: 2}},
				Log:     []string{"data: 1", "---"},
			},
		},
	}}
	view, err := New(Options{Service: svc, Out: &strings.Builder{}, Width: 60, Height: 20})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	frame := view.renderFrame(svc.snap)
	if !strings.Contains(frame, "/chatter [std_msgs/msg/String]") {
		t.Fatalf("expected active channel in status line, got %q", frame)
	}
	if !strings.Contains(frame, "state=running") {
		t.Fatalf("expected state in status line, got %q", frame)
	}
	if !strings.Contains(frame, "data: 1") {
		t.Fatal("expected scrollback tail in frame")
	}
}

func TestRenderFrameEmpty(t *testing.T) {
	svc := &stubService{}
	view, err := New(Options{Service: svc, Out: &strings.Builder{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	frame := view.renderFrame(schema.SnapshotResponse{})
	if !strings.Contains(frame, "no channels") {
		t.Fatalf("expected empty notice, got %q", frame)
	}
}

func TestFocusOverridesSelection(t *testing.T) {
	channels := []schema.ChannelSnapshot{
		{Channel: "/a", Active: true},
		{Channel: "/b"},
	}
	if got := selectChannel(channels, "/b"); got == nil || got.Channel != "/b" {
		t.Fatalf("expected focus to win, got %+v", got)
	}
	if got := selectChannel(channels, ""); got == nil || got.Channel != "/a" {
		t.Fatalf("expected first active channel, got %+v", got)
	}
	if got := selectChannel(channels, "/missing"); got != nil {
		t.Fatalf("expected nil for unknown focus, got %+v", got)
	}
}
