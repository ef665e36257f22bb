// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

// Package exbus implements the JETI EX-Bus serial protocol framing layer.
//
// EX-Bus is the outer transport spoken between a JETI receiver (master) and
// a sensor module (slave) over UART at 125000 or 250000 baud, 8-N-1. Each
// exchange is a single frame: the master sends channel data or polls for
// telemetry/JetiBox data, and the slave answers inside the ~4 ms reply slot
// that follows a request. This package provides the frame codec, the
// byte-at-a-time receive state machine, CRC validation, and channel-data
// parsing.
//
// See the JETI EX Bus protocol specification, EX_Bus_protokol_v121_EN.
package exbus

// Frame header bytes (byte 0)
const (
	HeaderChannel = 0x3E // master frame carrying channel data
	HeaderRequest = 0x3D // master frame requesting an answer
	HeaderReply   = 0x3B // slave answer frame
)

// Sub-header bytes (byte 1)
const (
	SubHeaderAnswerSlot = 0x01 // a reply slot follows this frame
	SubHeaderNoAnswer   = 0x03 // no reply slot
)

// Data identifier bytes (byte 4)
const (
	DataIDChannels  = 0x31 // channel values
	DataIDTelemetry = 0x3A // telemetry request / EX telemetry reply
	DataIDJetiBox   = 0x3B // JetiBox request / menu reply
)

// Frame size limits
const (
	// MaxFrameLength bounds the declared total length of any frame:
	// 6 bytes header, up to 24 channels of 2 bytes, 2 bytes CRC.
	MaxFrameLength = 64

	// FrameOverhead is the fixed byte count around the payload: two header
	// bytes, length, packet ID, data identifier, payload length and the
	// two CRC bytes. The declared length is always payloadLen + 8.
	FrameOverhead = 8

	// MinFrameLength is a request frame with an empty payload.
	MinFrameLength = FrameOverhead
)

// crcPolynomial is the reflected CRC16-CCITT polynomial used over whole
// frames. The register starts at zero, unlike the 0xFFFF-seeded variant.
const crcPolynomial = 0x8408

// Receive state machine states (internal)
const (
	stateHeader1 = iota
	stateHeader2
	stateLength
	stateBody
)

// channelTick is the wire unit of one channel value: 1/8 microsecond.
const channelTick = 8000.0 // ticks per millisecond
