// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package exbus

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// ErrCRCMismatch marks frames rejected by the CRC16 trailer check, as
// opposed to framing errors.
var ErrCRCMismatch = errors.New("CRC mismatch")

// DefaultIdleTimeout is the inter-byte gap after which a partial frame is
// abandoned. One nominal EX-Bus cycle is 10 ms, so a partial frame older
// than that can never complete.
const DefaultIdleTimeout = 10 * time.Millisecond

// Decoder implements the EX-Bus receive state machine. It recovers frame
// boundaries from a continuous byte stream: there is no start-of-frame
// marker beyond the header byte pair, so the declared length must be
// cross-checked against the CRC16 trailer before a frame is trusted.
type Decoder struct {
	state        int
	buffer       []byte
	packetLength int
	lastByte     time.Time

	// IdleTimeout abandons a stalled partial frame once the gap since the
	// previous byte exceeds it. Zero disables the timeout.
	IdleTimeout time.Duration

	// AcceptReplies also recognizes slave reply frames (header 0x3B).
	// A slave only needs the master's frames; a passive wire tap sees
	// both directions.
	AcceptReplies bool
}

// NewDecoder creates a new EX-Bus frame decoder.
func NewDecoder() *Decoder {
	return &Decoder{
		buffer:      make([]byte, 0, MaxFrameLength),
		IdleTimeout: DefaultIdleTimeout,
	}
}

// Reset discards any partial frame and returns to the header search state.
func (d *Decoder) Reset() {
	d.state = stateHeader1
	d.buffer = d.buffer[:0]
	d.packetLength = 0
}

func (d *Decoder) isHeader(b byte) bool {
	return b == HeaderChannel || b == HeaderRequest || (d.AcceptReplies && b == HeaderReply)
}

// DecodeByte processes a single byte through the state machine.
// It returns a completed, CRC-valid frame, or nil while the frame is
// incomplete. Malformed input yields an error and resynchronization on the
// next header pair; the caller is expected to drop the error after counting
// it, since the master simply re-polls on its own schedule.
func (d *Decoder) DecodeByte(b byte) (*Frame, error) {
	now := time.Now()
	if d.state != stateHeader1 && d.IdleTimeout > 0 && now.Sub(d.lastByte) > d.IdleTimeout {
		d.Reset()
	}
	d.lastByte = now

	switch d.state {
	case stateHeader1:
		if d.isHeader(b) {
			d.buffer = append(d.buffer[:0], b)
			d.state = stateHeader2
		}
		// anything else is inter-frame noise
		return nil, nil

	case stateHeader2:
		if b != SubHeaderAnswerSlot && b != SubHeaderNoAnswer {
			// Resynchronize. Skipping the reset here would misread the
			// next byte as the length field and desync the stream.
			d.Reset()
			if d.isHeader(b) {
				d.buffer = append(d.buffer, b)
				d.state = stateHeader2
			}
			return nil, nil
		}
		d.buffer = append(d.buffer, b)
		d.state = stateLength
		return nil, nil

	case stateLength:
		d.buffer = append(d.buffer, b)
		d.packetLength = int(b)
		if d.packetLength > MaxFrameLength || d.packetLength < MinFrameLength {
			length := d.packetLength
			d.Reset()
			return nil, fmt.Errorf("invalid frame length: %d (valid %d-%d)", length, MinFrameLength, MaxFrameLength)
		}
		d.state = stateBody
		return nil, nil

	case stateBody:
		d.buffer = append(d.buffer, b)
		if len(d.buffer) < d.packetLength {
			return nil, nil
		}

		received := binary.LittleEndian.Uint16(d.buffer[len(d.buffer)-2:])
		computed := Checksum(d.buffer[:len(d.buffer)-2])
		if received != computed {
			d.Reset()
			return nil, fmt.Errorf("%w: expected 0x%04X, got 0x%04X", ErrCRCMismatch, computed, received)
		}

		payloadLen := int(d.buffer[5])
		if payloadLen+FrameOverhead != d.packetLength {
			length := d.packetLength
			d.Reset()
			return nil, fmt.Errorf("payload length %d inconsistent with frame length %d", payloadLen, length)
		}

		payload := make([]byte, payloadLen)
		copy(payload, d.buffer[6:6+payloadLen])
		frame := &Frame{
			header:    d.buffer[0],
			subHeader: d.buffer[1],
			length:    d.buffer[2],
			packetID:  d.buffer[3],
			dataID:    d.buffer[4],
			payload:   payload,
			crc:       received,
			timestamp: now,
		}
		d.Reset()
		return frame, nil

	default:
		d.Reset()
		return nil, fmt.Errorf("invalid decoder state: %d", d.state)
	}
}
