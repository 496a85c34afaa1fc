package echoproc

import (
	"context"
	"io"
	"testing"
	"time"

	"pkt.systems/echowave/schema"
)

func TestChunkStreamEmitsBothPipes(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	stream := newChunkStream(ctx, stdoutR, stderrR)

	go func() {
		_, _ = stdoutW.Write([]byte("data: 1\n---\n"))
		_ = stdoutW.Close()
	}()
	go func() {
		_, _ = stderrW.Write([]byte("warn: slow\n"))
		_ = stderrW.Close()
	}()
	go func() {
		stream.wg.Wait()
		stream.finish(0, "")
	}()

	var sawPrimary, sawDiagnostic, sawExit bool
	for {
		event, err := stream.Next(ctx)
		if err != nil {
			if err == io.EOF {
				break
			}
			t.Fatalf("Next: %v", err)
		}
		switch {
		case event.Type == schema.ProcChunk && event.Stream == schema.StreamPrimary:
			if string(event.Data) == "data: 1\n---\n" {
				sawPrimary = true
			}
		case event.Type == schema.ProcChunk && event.Stream == schema.StreamDiagnostic:
			if string(event.Data) == "warn: slow\n" {
				sawDiagnostic = true
			}
		case event.Type == schema.ProcExit:
			sawExit = true
		}
	}
	if !sawPrimary || !sawDiagnostic || !sawExit {
		t.Fatalf("expected all events (primary=%t diagnostic=%t exit=%t)", sawPrimary, sawDiagnostic, sawExit)
	}
}

func TestChunkStreamNextHonorsContext(t *testing.T) {
	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	defer func() {
		_ = stdoutW.Close()
		_ = stderrW.Close()
	}()
	stream := newChunkStream(context.Background(), stdoutR, stderrR)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := stream.Next(ctx); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
