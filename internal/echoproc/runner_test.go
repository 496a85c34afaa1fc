package echoproc

import (
	"context"
	"io"
	"testing"
	"time"

	"pkt.systems/echowave/core"
	"pkt.systems/echowave/schema"
)

func TestParseChannelList(t *testing.T) {
	out := []byte("/chatter [std_msgs/msg/String]\n\n/odom [nav_msgs/msg/Odometry]\n/bare\n")
	infos := parseChannelList(out)
	want := []schema.ChannelInfo{
		{Name: "/chatter", Type: "std_msgs/msg/String"},
		{Name: "/odom", Type: "nav_msgs/msg/Odometry"},
		{Name: "/bare"},
	}
	if len(infos) != len(want) {
		t.Fatalf("expected %d channels, got %d: %+v", len(want), len(infos), infos)
	}
	for i := range want {
		if infos[i] != want[i] {
			t.Fatalf("channel %d mismatch: got %+v want %+v", i, infos[i], want[i])
		}
	}
}

func TestSubscribeRejectsEmptyChannel(t *testing.T) {
	runner, err := NewRunner(Config{})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	if _, err := runner.Subscribe(context.Background(), core.SubscribeRequest{Channel: "  "}); err != schema.ErrInvalidChannel {
		t.Fatalf("expected ErrInvalidChannel, got %v", err)
	}
}

func TestSubscribeRunsProcessToCompletion(t *testing.T) {
	runner, err := NewRunner(Config{
		BinaryPath: "sh",
		EchoArgs:   []string{"-c", "printf 'data: 1\\n---\\n'"},
	})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	handle, err := runner.Subscribe(ctx, core.SubscribeRequest{Channel: "/chatter"})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	stream := handle.Events()

	var output []byte
	var exit *schema.ProcEvent
	for {
		event, err := stream.Next(ctx)
		if err != nil {
			if err == io.EOF {
				break
			}
			t.Fatalf("Next: %v", err)
		}
		switch event.Type {
		case schema.ProcChunk:
			if event.Stream == schema.StreamPrimary {
				output = append(output, event.Data...)
			}
		case schema.ProcExit:
			copied := event
			exit = &copied
		}
	}
	if string(output) != "data: 1\n---\n" {
		t.Fatalf("unexpected stdout: %q", output)
	}
	if exit == nil || exit.ExitCode != 0 {
		t.Fatalf("expected clean exit, got %+v", exit)
	}
	select {
	case <-handle.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("process did not report done")
	}
	_ = handle.Close()
}
