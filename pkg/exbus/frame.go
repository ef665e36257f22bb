// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package exbus

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Kind classifies a frame by its header and data identifier bytes.
type Kind int

const (
	KindUnknown Kind = iota
	KindChannelData
	KindTelemetryRequest
	KindJetiBoxRequest
	KindTelemetryReply
	KindJetiBoxReply
)

// String returns the human-readable name of the frame kind.
func (k Kind) String() string {
	switch k {
	case KindChannelData:
		return "CHANNEL_DATA"
	case KindTelemetryRequest:
		return "TELEMETRY_REQUEST"
	case KindJetiBoxRequest:
		return "JETIBOX_REQUEST"
	case KindTelemetryReply:
		return "TELEMETRY_REPLY"
	case KindJetiBoxReply:
		return "JETIBOX_REPLY"
	default:
		return "UNKNOWN"
	}
}

// Frame represents a decoded EX-Bus frame.
type Frame struct {
	header    byte
	subHeader byte
	length    uint8
	packetID  byte
	dataID    byte
	payload   []byte
	crc       uint16
	timestamp time.Time
}

// Header returns the frame's header byte (0x3E, 0x3D or 0x3B).
func (f *Frame) Header() byte {
	return f.header
}

// SubHeader returns the frame's sub-header byte (0x01 or 0x03).
func (f *Frame) SubHeader() byte {
	return f.subHeader
}

// Length returns the declared total frame length including header and CRC.
func (f *Frame) Length() uint8 {
	return f.length
}

// PacketID returns the request-scoped correlation byte. A slave must echo
// it in the reply to the request that carried it.
func (f *Frame) PacketID() byte {
	return f.packetID
}

// DataID returns the data identifier byte (0x31, 0x3A or 0x3B).
func (f *Frame) DataID() byte {
	return f.dataID
}

// Payload returns the frame's data block.
func (f *Frame) Payload() []byte {
	return f.payload
}

// CRC returns the received CRC16 value (after LSB/MSB swap).
func (f *Frame) CRC() uint16 {
	return f.crc
}

// Timestamp returns the frame's decode timestamp.
func (f *Frame) Timestamp() time.Time {
	return f.timestamp
}

// AllowsReply reports whether a reply slot follows this frame on the bus.
func (f *Frame) AllowsReply() bool {
	return f.header == HeaderRequest && f.subHeader == SubHeaderAnswerSlot
}

// Kind classifies the frame by its header and data identifier.
func (f *Frame) Kind() Kind {
	switch {
	case f.header == HeaderChannel && f.dataID == DataIDChannels:
		return KindChannelData
	case f.header == HeaderRequest && f.dataID == DataIDTelemetry:
		return KindTelemetryRequest
	case f.header == HeaderRequest && f.dataID == DataIDJetiBox:
		return KindJetiBoxRequest
	case f.header == HeaderReply && f.dataID == DataIDTelemetry:
		return KindTelemetryReply
	case f.header == HeaderReply && f.dataID == DataIDJetiBox:
		return KindJetiBoxReply
	default:
		return KindUnknown
	}
}

// ParseFrame decodes a complete frame from raw bytes, validating the length
// invariant and the CRC16 trailer. Unlike the streaming Decoder it requires
// the buffer to hold exactly one frame.
func ParseFrame(raw []byte) (*Frame, error) {
	if len(raw) < MinFrameLength {
		return nil, fmt.Errorf("frame too short: %d bytes (min %d)", len(raw), MinFrameLength)
	}
	if len(raw) > MaxFrameLength {
		return nil, fmt.Errorf("frame too long: %d bytes (max %d)", len(raw), MaxFrameLength)
	}
	if int(raw[2]) != len(raw) {
		return nil, fmt.Errorf("declared length %d does not match frame size %d", raw[2], len(raw))
	}
	payloadLen := int(raw[5])
	if payloadLen+FrameOverhead != len(raw) {
		return nil, fmt.Errorf("payload length %d inconsistent with frame size %d", payloadLen, len(raw))
	}

	received := binary.LittleEndian.Uint16(raw[len(raw)-2:])
	computed := Checksum(raw[:len(raw)-2])
	if received != computed {
		return nil, fmt.Errorf("%w: expected 0x%04X, got 0x%04X", ErrCRCMismatch, computed, received)
	}

	payload := make([]byte, payloadLen)
	copy(payload, raw[6:6+payloadLen])

	return &Frame{
		header:    raw[0],
		subHeader: raw[1],
		length:    raw[2],
		packetID:  raw[3],
		dataID:    raw[4],
		payload:   payload,
		crc:       received,
		timestamp: time.Now(),
	}, nil
}
