// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

// Package jetiex implements the JETI EX telemetry packet codec.
//
// EX is the inner payload protocol carried inside EX-Bus telemetry frames
// (and, on older hardware, spoken directly at 9600 baud). An EX packet
// transports either sensor data values, text labels describing those
// values, or free-form pilot messages, each protected by a CRC8 trailer.
//
// See JETI_Telem_protocol_EN_V1.07.
package jetiex

// Identifier is the leading byte of every EX packet when embedded in an
// EX-Bus frame (the 0x7E message separator of the standalone serial form
// is not used on the bus).
const Identifier = 0x0F

// PacketType selects the EX packet body variant, stored in the top two
// bits of the type/length byte.
type PacketType int

// Packet types
const (
	TypeText    PacketType = 0
	TypeData    PacketType = 1
	TypeMessage PacketType = 2
)

// String returns the human-readable name of the packet type.
func (t PacketType) String() string {
	switch t {
	case TypeText:
		return "TEXT"
	case TypeData:
		return "DATA"
	case TypeMessage:
		return "MESSAGE"
	default:
		return "UNKNOWN"
	}
}

// DataType selects the encoded width and packing of one telemetry value.
type DataType int

// Data type codes from the EX specification. The bit width includes the
// sign; the two bits below the sign hold the decimal-point position.
const (
	DataTypeInt6   DataType = 0 // 1 byte, -31..31
	DataTypeInt14  DataType = 1 // 2 bytes, -8191..8191
	DataTypeInt22  DataType = 4 // 3 bytes, -2097151..2097151
	DataTypeDate   DataType = 5 // 3 bytes, date and time
	DataTypeInt30  DataType = 8 // 4 bytes, -536870911..536870911
	DataTypeCoords DataType = 9 // 4 bytes, GPS coordinate
)

// Size limits
const (
	// MaxPacketLength is the protocol hard cap on a whole EX packet
	// including identifier, header, body and CRC8.
	MaxPacketLength = 29

	// headerOverhead is added to the body length to form the 6-bit length
	// field: product ID (2), device ID (2), reserved byte and the CRC8.
	headerOverhead = 6

	// headerSize is the fixed prefix before the body: identifier,
	// type/length byte, product ID, device ID, reserved byte.
	headerSize = 7

	MaxDescriptionLength = 31 // 5-bit field
	MaxUnitLength        = 7  // 3-bit field
	MaxMessageLength     = 31 // 5-bit field
	MaxMessageClass      = 7  // 3-bit field

	// SimpleTextLength is the fixed size of a JetiBox screen: two
	// separator bytes around 32 characters.
	SimpleTextLength = 34
)

// MessageClass carries the semantics of a pilot message.
type MessageClass int

// Message classes
const (
	MessageBasic       MessageClass = 0 // informative only
	MessageStatus      MessageClass = 1 // device ready, GPS fix, ...
	MessageWarning     MessageClass = 2 // alarms, preflight checks
	MessageRecoverable MessageClass = 3 // loss of GPS position, ...
	MessageFatal       MessageClass = 4 // peripheral failure
)

// crcPolynomial is the MSB-first CRC8 polynomial used over EX packets.
const crcPolynomial = 0x07
