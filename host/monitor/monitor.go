// Package monitor decodes the trace stream a board sends over its UART
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"

	"blinky/core"
	"blinky/host/serial"
	"blinky/protocol"
)

// Handler receives every decoded event together with its frame sequence
type Handler func(seq uint8, event core.TraceEvent)

// Stats counts what the monitor has seen so far
type Stats struct {
	Frames       uint32
	Events       uint32
	Discarded    uint32 // Frames dropped while resynchronizing
	Lost         uint32 // Frames missing from the sequence
	DecodeErrors uint32 // Frames whose payload was not a whole number of events
}

// Monitor reads frames from a byte stream and decodes their trace events
type Monitor struct {
	r        io.Reader
	deframer *protocol.Deframer
	stats    Stats

	// Follow keeps reading after EOF. Serial ports report a read timeout as EOF.
	Follow bool
}

// New creates a monitor reading from r
func New(r io.Reader) *Monitor {
	return &Monitor{
		r:        r,
		deframer: protocol.NewDeframer(),
	}
}

// Open connects to a board's trace UART
func Open(cfg *serial.Config) (*Monitor, serial.Port, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := port.Flush(); err != nil {
		port.Close()
		return nil, nil, fmt.Errorf("failed to flush %s: %w", cfg.Device, err)
	}

	m := New(port)
	m.Follow = true
	return m, port, nil
}

// Run decodes events until the stream ends or ctx is cancelled
func (m *Monitor) Run(ctx context.Context, handler Handler) error {
	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := m.r.Read(buf)
		if n > 0 {
			m.process(buf[:n], handler)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				if m.Follow {
					continue
				}
				return nil
			}
			return fmt.Errorf("trace read failed: %w", err)
		}
	}
}

func (m *Monitor) process(data []byte, handler Handler) {
	for _, frame := range m.deframer.Feed(data) {
		m.stats.Frames++
		payload := frame.Payload
		for len(payload) > 0 {
			event, err := core.DecodeTraceEvent(&payload)
			if err != nil {
				m.stats.DecodeErrors++
				break
			}
			m.stats.Events++
			if handler != nil {
				handler(frame.Seq, event)
			}
		}
	}
	m.stats.Discarded = m.deframer.Discarded
	m.stats.Lost = m.deframer.Lost
}

// Stats returns the counters accumulated so far
func (m *Monitor) Stats() Stats {
	return m.stats
}

// Reset drops partial input and clears the counters
func (m *Monitor) Reset() {
	m.deframer.Reset()
	m.stats = Stats{}
}
