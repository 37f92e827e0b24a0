package protocol

import "errors"

var (
	ErrFrameTooLarge = errors.New("payload exceeds frame size")
)

// Frame is one validated block received from the stream
type Frame struct {
	Seq     uint8
	Payload []byte
}

// EncodeFrame writes payload as a complete frame with the given sequence number
func EncodeFrame(output OutputBuffer, seq uint8, payload []byte) error {
	if len(payload) > FramePayloadMax {
		return ErrFrameTooLarge
	}

	start := output.CurPosition()
	output.Output([]byte{
		byte(len(payload) + FrameLengthMin),
		FrameDest | (seq & FrameSeqMask),
	})
	output.Output(payload)

	crc := CRC16(output.DataSince(start))
	output.Output([]byte{
		uint8(crc >> 8),
		uint8(crc & 0xFF),
		FrameValueSync,
	})
	return nil
}

// Deframer splits a byte stream into frames, resynchronizing on the sync
// byte whenever it sees a bad length, destination or checksum.
type Deframer struct {
	pending      []byte
	synchronized bool
	expectedSeq  uint8
	seenFirst    bool

	// Discarded counts frames rejected while resynchronizing
	Discarded uint32
	// Lost counts frames missing according to the sequence numbers
	Lost uint32
}

// NewDeframer creates a deframer that starts out synchronized
func NewDeframer() *Deframer {
	return &Deframer{synchronized: true}
}

// Feed appends data and returns every complete frame now available.
// Returned payloads do not alias data.
func (d *Deframer) Feed(data []byte) []Frame {
	d.pending = append(d.pending, data...)
	buf := d.pending

	var frames []Frame
	for len(buf) > 0 {
		if !d.synchronized {
			syncPos := -1
			for i, b := range buf {
				if b == FrameValueSync {
					syncPos = i
					break
				}
			}
			if syncPos < 0 {
				buf = nil
				break
			}
			buf = buf[syncPos+1:]
			d.synchronized = true
			continue
		}

		// Skip leading sync bytes
		if buf[0] == FrameValueSync {
			buf = buf[1:]
			continue
		}

		msgLen := int(buf[FramePositionLen])
		if msgLen < FrameLengthMin || msgLen > FrameLengthMax {
			d.desync()
			continue
		}

		// Wait for the full frame; the destination can be checked early
		if len(buf) > FramePositionSeq && buf[FramePositionSeq]&^FrameSeqMask != FrameDest {
			d.desync()
			continue
		}
		if len(buf) < msgLen {
			break
		}

		if buf[msgLen-FrameTrailerSync] != FrameValueSync {
			d.desync()
			continue
		}

		frameCRC := uint16(buf[msgLen-FrameTrailerCRC])<<8 |
			uint16(buf[msgLen-FrameTrailerCRC+1])
		if frameCRC != CRC16(buf[:msgLen-FrameTrailerSize]) {
			d.desync()
			continue
		}

		seq := buf[FramePositionSeq] & FrameSeqMask
		payload := make([]byte, msgLen-FrameLengthMin)
		copy(payload, buf[FrameHeaderSize:msgLen-FrameTrailerSize])
		frames = append(frames, Frame{Seq: seq, Payload: payload})
		d.trackSequence(seq)

		buf = buf[msgLen:]
	}

	// Keep only the unconsumed tail
	d.pending = append(d.pending[:0], buf...)
	return frames
}

func (d *Deframer) desync() {
	d.synchronized = false
	d.Discarded++
}

func (d *Deframer) trackSequence(seq uint8) {
	if d.seenFirst && seq != d.expectedSeq {
		d.Lost += uint32((seq - d.expectedSeq) & FrameSeqMask)
	}
	d.seenFirst = true
	d.expectedSeq = (seq + 1) & FrameSeqMask
}

// Reset drops buffered bytes and sequence tracking
func (d *Deframer) Reset() {
	d.pending = d.pending[:0]
	d.synchronized = true
	d.seenFirst = false
}
