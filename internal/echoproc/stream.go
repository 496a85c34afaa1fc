package echoproc

import (
	"context"
	"io"
	"sync"

	"pkt.systems/echowave/schema"
	"pkt.systems/pslog"
)

const chunkSize = 32 * 1024

// chunkStream merges stdout and stderr into one ordered event stream
// of raw byte chunks, terminated by a single exit event. Per-pipe
// ordering is preserved; the decoder downstream handles multi-byte
// sequences split across chunk boundaries.
type chunkStream struct {
	events chan schema.ProcEvent
	errMu  sync.Mutex
	err    error
	wg     sync.WaitGroup
	log    pslog.Logger
}

func newChunkStream(ctx context.Context, stdout io.Reader, stderr io.Reader) *chunkStream {
	stream := &chunkStream{
		events: make(chan schema.ProcEvent, 256),
		log:    pslog.Ctx(ctx),
	}
	stream.wg.Add(2)
	go stream.read(stdout, schema.StreamPrimary)
	go stream.read(stderr, schema.StreamDiagnostic)
	return stream
}

func (s *chunkStream) read(reader io.Reader, kind schema.StreamKind) {
	defer s.wg.Done()
	buf := make([]byte, chunkSize)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			s.events <- schema.ProcEvent{Type: schema.ProcChunk, Stream: kind, Data: data}
		}
		if err != nil {
			if err != io.EOF {
				if s.log != nil {
					s.log.Warn("echo pipe read failed", "stream", kind, "err", err)
				}
				s.setErr(err)
			}
			return
		}
	}
}

// finish publishes the exit event and closes the stream. Must be
// called after both pipe readers returned.
func (s *chunkStream) finish(exitCode int, signal string) {
	s.events <- schema.ProcEvent{Type: schema.ProcExit, ExitCode: exitCode, Signal: signal}
	close(s.events)
}

func (s *chunkStream) setErr(err error) {
	if err == nil {
		return
	}
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *chunkStream) Next(ctx context.Context) (schema.ProcEvent, error) {
	select {
	case <-ctx.Done():
		return schema.ProcEvent{}, ctx.Err()
	case event, ok := <-s.events:
		if ok {
			return event, nil
		}
		s.errMu.Lock()
		err := s.err
		s.errMu.Unlock()
		if err != nil {
			return schema.ProcEvent{}, err
		}
		return schema.ProcEvent{}, io.EOF
	}
}

func (s *chunkStream) Close() error {
	return nil
}
