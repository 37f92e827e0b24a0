package core

import (
	"blinky/protocol"
)

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TraceSink receives every recorded trace event. It runs with interrupts
// masked and must not block.
type TraceSink func(TraceEvent)

// TraceEvent captures one observable step of the blinker
type TraceEvent struct {
	Kind  uint8  // Event kind code
	Clock uint32 // System clock at event
	Value uint32 // Kind-dependent value
}

// Event kind codes
const (
	EvtBoot         = 1 // Init finished, value = sysclk in MHz
	EvtButtonEdge   = 2 // Button accepted, value = new running flag
	EvtSpuriousEdge = 3 // Shared line fired for another pin
	EvtTimerStart   = 4 // value = period in ms
	EvtTimerStop    = 5
	EvtLEDToggle    = 6 // value = new LED level
	EvtFault        = 7 // Handler found an empty cell
)

const (
	TraceRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	traceSink TraceSink

	// Trace ring, written only with interrupts masked
	traceRing     [TraceRingSize]TraceEvent
	traceRingHead uint8
)

// SetDebugWriter sets the platform-specific debug output function
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// SetTraceSink installs the platform's trace stream, nil to remove it
func SetTraceSink(sink TraceSink) {
	traceSink = sink
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordTrace stores an event in the ring and forwards it to the sink.
// Callers must hold a critical section.
func RecordTrace(kind uint8, value uint32) {
	evt := TraceEvent{
		Kind:  kind,
		Clock: GetTime(),
		Value: value,
	}
	idx := traceRingHead
	traceRing[idx] = evt
	traceRingHead = (idx + 1) % TraceRingSize

	if traceSink != nil {
		traceSink(evt)
	}
}

// TraceRing returns the recorded events, oldest first
func TraceRing() []TraceEvent {
	var events []TraceEvent
	WithCritical(func(cs CriticalSection) {
		start := traceRingHead
		for i := uint8(0); i < TraceRingSize; i++ {
			evt := traceRing[(start+i)%TraceRingSize]
			if evt.Kind == 0 {
				continue // Empty slot
			}
			events = append(events, evt)
		}
	})
	return events
}

// DumpTraceRing outputs the trace ring through the debug writer
func DumpTraceRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[TRACE] === Trace Ring Dump ===")
	for _, evt := range TraceRing() {
		debugPrintln("[TRACE] " + evt.String())
	}
	debugPrintln("[TRACE] === End Dump ===")
}

// ClearTraceRing clears the trace buffer
func ClearTraceRing() {
	WithCritical(func(cs CriticalSection) {
		for i := range traceRing {
			traceRing[i] = TraceEvent{}
		}
		traceRingHead = 0
	})
}

// Name returns the short event name
func (e TraceEvent) Name() string {
	switch e.Kind {
	case EvtBoot:
		return "BOOT"
	case EvtButtonEdge:
		return "BUTTON"
	case EvtSpuriousEdge:
		return "SPURIOUS"
	case EvtTimerStart:
		return "TIMER_START"
	case EvtTimerStop:
		return "TIMER_STOP"
	case EvtLEDToggle:
		return "LED_TOGGLE"
	case EvtFault:
		return "FAULT!"
	default:
		return "UNKNOWN"
	}
}

func (e TraceEvent) String() string {
	return e.Name() + " clock=" + utoa(e.Clock) + " value=" + utoa(e.Value)
}

// Encode appends the event as three VLQ fields
func (e TraceEvent) Encode(output protocol.OutputBuffer) {
	protocol.EncodeVLQUint(output, uint32(e.Kind))
	protocol.EncodeVLQUint(output, e.Clock)
	protocol.EncodeVLQUint(output, e.Value)
}

// DecodeTraceEvent reads one event written by Encode, advancing data
func DecodeTraceEvent(data *[]byte) (TraceEvent, error) {
	kind, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return TraceEvent{}, err
	}
	clock, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return TraceEvent{}, err
	}
	value, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return TraceEvent{}, err
	}
	return TraceEvent{Kind: uint8(kind), Clock: clock, Value: value}, nil
}
