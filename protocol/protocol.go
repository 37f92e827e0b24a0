// Package protocol frames diagnostic trace messages for a byte stream.
//
// The framing follows Klipper's message blocks: a length byte, a sequence
// byte, a VLQ-encoded payload, a CRC16 and a trailing sync byte.
package protocol

// Version represents the trace protocol version
const Version = "1.0.0"

// Frame layout constants
const (
	FrameHeaderSize  = 2
	FrameTrailerSize = 3
	FrameLengthMin   = FrameHeaderSize + FrameTrailerSize
	FrameLengthMax   = 64
	FramePayloadMax  = FrameLengthMax - FrameLengthMin

	FramePositionLen = 0
	FramePositionSeq = 1
	FrameTrailerCRC  = 3
	FrameTrailerSync = 1
	FrameValueSync   = 0x7E

	// Sequence byte: high nibble is the fixed destination marker,
	// low nibble counts frames
	FrameDest    = 0x10
	FrameSeqMask = 0x0F
)
