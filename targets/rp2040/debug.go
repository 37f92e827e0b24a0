//go:build rp2040

package main

import (
	"blinky/core"
	"blinky/protocol"
	"machine"
	"runtime/interrupt"
)

var (
	traceUART    *machine.UART
	traceEnabled bool
	traceSeq     uint8
	traceOutput  = protocol.NewScratchOutput()
)

func interruptDisable() interrupt.State {
	return interrupt.Disable()
}

func interruptRestore(state interrupt.State) {
	interrupt.Restore(state)
}

// InitDebug routes core debug text to the USB serial console
func InitDebug() {
	core.SetDebugWriter(func(s string) {
		machine.Serial.Write([]byte(s))
		machine.Serial.Write([]byte("\r\n"))
	})
	core.SetDebugEnabled(true)
}

// InitTraceUART initializes UART0 on GPIO0 (TX) and GPIO1 (RX) for framed
// trace events. Baud rate: 115200
func InitTraceUART() {
	traceUART = machine.UART0

	err := traceUART.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GPIO0,
		RX:       machine.GPIO1,
	})
	if err != nil {
		traceEnabled = false
		return
	}
	traceEnabled = true
}

// sendTrace frames one event onto the trace UART. It is called from
// handlers with interrupts masked, so the frame is small and unbuffered.
func sendTrace(evt core.TraceEvent) {
	if !traceEnabled {
		return
	}

	var payload protocol.ScratchOutput
	evt.Encode(&payload)

	traceOutput.Reset()
	if err := protocol.EncodeFrame(traceOutput, traceSeq, payload.Result()); err != nil {
		return
	}
	traceSeq = (traceSeq + 1) & protocol.FrameSeqMask

	traceUART.Write(traceOutput.Result())
}
