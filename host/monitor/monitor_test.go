package monitor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"blinky/core"
	"blinky/protocol"
)

func encodeEvents(t *testing.T, seq uint8, events ...core.TraceEvent) []byte {
	t.Helper()
	payload := protocol.NewScratchOutput()
	for _, e := range events {
		e.Encode(payload)
	}
	frame := protocol.NewScratchOutput()
	if err := protocol.EncodeFrame(frame, seq, payload.Result()); err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}
	return append([]byte(nil), frame.Result()...)
}

type received struct {
	seq   uint8
	event core.TraceEvent
}

func collect(got *[]received) Handler {
	return func(seq uint8, event core.TraceEvent) {
		*got = append(*got, received{seq, event})
	}
}

func TestMonitorDecodesEvents(t *testing.T) {
	boot := core.TraceEvent{Kind: core.EvtBoot, Clock: 0, Value: 72}
	start := core.TraceEvent{Kind: core.EvtTimerStart, Clock: 1500, Value: 1000}
	toggle := core.TraceEvent{Kind: core.EvtLEDToggle, Clock: 1001500, Value: 0}

	var stream []byte
	stream = append(stream, encodeEvents(t, 0, boot)...)
	stream = append(stream, encodeEvents(t, 1, start, toggle)...)

	var got []received
	m := New(bytes.NewReader(stream))
	if err := m.Run(context.Background(), collect(&got)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []received{{0, boot}, {1, start}, {1, toggle}}
	if len(got) != len(want) {
		t.Fatalf("Expected %d events, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Event %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}

	stats := m.Stats()
	if stats.Frames != 2 || stats.Events != 3 || stats.Lost != 0 || stats.DecodeErrors != 0 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestMonitorResyncsAfterGarbage(t *testing.T) {
	toggle := core.TraceEvent{Kind: core.EvtLEDToggle, Clock: 10, Value: 1}

	stream := []byte{0x42, 0x00, 0xFF}
	stream = append(stream, protocol.FrameValueSync)
	stream = append(stream, encodeEvents(t, 0, toggle)...)

	var got []received
	m := New(bytes.NewReader(stream))
	if err := m.Run(context.Background(), collect(&got)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(got) != 1 || got[0].event != toggle {
		t.Fatalf("Expected the toggle after resync, got %v", got)
	}
	if m.Stats().Discarded == 0 {
		t.Error("Expected garbage to be counted as discarded")
	}
}

func TestMonitorCountsLostFrames(t *testing.T) {
	e := core.TraceEvent{Kind: core.EvtButtonEdge, Clock: 1, Value: 1}

	var stream []byte
	stream = append(stream, encodeEvents(t, 0, e)...)
	stream = append(stream, encodeEvents(t, 3, e)...)

	m := New(bytes.NewReader(stream))
	if err := m.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if lost := m.Stats().Lost; lost != 2 {
		t.Errorf("Expected 2 lost frames, got %d", lost)
	}
}

func TestMonitorTruncatedPayload(t *testing.T) {
	frame := protocol.NewScratchOutput()
	if err := protocol.EncodeFrame(frame, 0, []byte{core.EvtLEDToggle}); err != nil {
		t.Fatal(err)
	}

	m := New(bytes.NewReader(frame.Result()))
	if err := m.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	stats := m.Stats()
	if stats.DecodeErrors != 1 || stats.Events != 0 {
		t.Errorf("Expected one decode error and no events, got %+v", stats)
	}
}

// chunkReader hands out one chunk per read then keeps reporting EOF
type chunkReader struct {
	chunks [][]byte
	onDry  func()
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		if r.onDry != nil {
			r.onDry()
		}
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks = r.chunks[1:]
	return n, nil
}

func TestMonitorFollowSurvivesEOF(t *testing.T) {
	frame := encodeEvents(t, 0, core.TraceEvent{Kind: core.EvtTimerStop, Clock: 5})
	split := len(frame) / 2

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reads := 0
	r := &chunkReader{chunks: [][]byte{frame[:split]}}
	r.onDry = func() {
		reads++
		if reads == 1 {
			// A timeout between the two halves of a frame
			r.chunks = append(r.chunks, frame[split:])
			return
		}
		cancel()
	}

	var got []received
	m := New(r)
	m.Follow = true
	err := m.Run(ctx, collect(&got))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if len(got) != 1 || got[0].event.Kind != core.EvtTimerStop {
		t.Errorf("Expected the split frame to decode, got %v", got)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("device unplugged")
}

func TestMonitorReadError(t *testing.T) {
	m := New(failingReader{})
	if err := m.Run(context.Background(), nil); err == nil {
		t.Error("Expected read error to be returned")
	}
}

func TestMonitorReset(t *testing.T) {
	e := core.TraceEvent{Kind: core.EvtBoot, Value: 72}
	m := New(bytes.NewReader(encodeEvents(t, 0, e)))
	if err := m.Run(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	m.Reset()
	if m.Stats() != (Stats{}) {
		t.Errorf("Expected zero stats after reset, got %+v", m.Stats())
	}
}
