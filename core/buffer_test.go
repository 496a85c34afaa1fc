package core

import (
	"fmt"
	"testing"

	"pkt.systems/echowave/schema"
)

func TestSampleBufferEvictsOldestFirst(t *testing.T) {
	buf := newSampleBuffer(3)
	for i := 1; i <= 5; i++ {
		buf.Append(schema.Sample{T: float64(i), V: float64(i * 10)})
	}
	got := buf.Snapshot()
	if len(got) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(got))
	}
	for i, wantT := range []float64{3, 4, 5} {
		if got[i].T != wantT {
			t.Fatalf("sample %d: got t=%v want t=%v", i, got[i].T, wantT)
		}
	}
}

func TestSampleBufferSetCapacityTrimsFront(t *testing.T) {
	buf := newSampleBuffer(10)
	for i := 1; i <= 6; i++ {
		buf.Append(schema.Sample{T: float64(i)})
	}
	buf.SetCapacity(2)
	got := buf.Snapshot()
	if len(got) != 2 || got[0].T != 5 || got[1].T != 6 {
		t.Fatalf("unexpected snapshot after shrink: %+v", got)
	}
	// Growing never re-derives trimmed samples.
	buf.SetCapacity(10)
	if buf.Len() != 2 {
		t.Fatalf("expected 2 samples after grow, got %d", buf.Len())
	}
}

func TestSampleBufferSnapshotIsCopy(t *testing.T) {
	buf := newSampleBuffer(4)
	buf.Append(schema.Sample{T: 1, V: 1})
	snap := buf.Snapshot()
	snap[0].V = 99
	if buf.Snapshot()[0].V != 1 {
		t.Fatal("snapshot aliases internal storage")
	}
}

func TestLogBufferTrimsToMaxLines(t *testing.T) {
	buf := newLogBuffer(3)
	for i := 1; i <= 5; i++ {
		buf.Append(fmt.Sprintf("line %d", i))
	}
	got := buf.Snapshot(0)
	if len(got) != 3 || got[0] != "line 3" || got[2] != "line 5" {
		t.Fatalf("unexpected lines: %v", got)
	}
}

func TestLogBufferSnapshotLimit(t *testing.T) {
	buf := newLogBuffer(0)
	buf.Append("a", "b", "c")
	got := buf.Snapshot(2)
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("unexpected tail: %v", got)
	}
	if len(buf.Snapshot(10)) != 3 {
		t.Fatal("limit beyond length should return everything")
	}
}
