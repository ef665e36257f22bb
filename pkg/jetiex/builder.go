// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package jetiex

import (
	"errors"
	"fmt"
)

// ErrFieldTooLong is returned when a description, unit or message exceeds
// its wire length field.
var ErrFieldTooLong = errors.New("field too long")

// ErrLengthOverflow is returned when a packet body would exceed the 29-byte
// protocol cap. Callers must split the values across packets instead.
var ErrLengthOverflow = errors.New("packet length overflow")

// Value is one telemetry value to be encoded into a data packet.
type Value struct {
	FieldID   uint8 // 1-15; 0 is reserved for the device name
	DataType  DataType
	Precision uint8
	Value     float64
	Longitude bool // coordinate axis, DataTypeCoords only
}

// Builder constructs EX packets for one sensor device. The product and
// device IDs go into every packet header; the transmitter uses them to tell
// devices apart.
type Builder struct {
	ProductID uint16
	DeviceID  uint16
}

// header emits the 7-byte packet prefix for a body of the given length.
func (b *Builder) header(ptype PacketType, bodyLen int) ([]byte, error) {
	total := bodyLen + headerSize + 1 // + CRC8
	if total > MaxPacketLength {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrLengthOverflow, total, MaxPacketLength)
	}
	// body + product/device IDs + reserved + CRC8; always fits 6 bits
	// once the 29-byte cap holds
	lengthField := byte(bodyLen + headerOverhead)

	return []byte{
		Identifier,
		byte(ptype)<<6 | lengthField,
		byte(b.ProductID), byte(b.ProductID >> 8),
		byte(b.DeviceID), byte(b.DeviceID >> 8),
		0x00,
	}, nil
}

// finalize appends the CRC8 trailer, computed from the type/length byte on.
func finalize(packet []byte) []byte {
	return append(packet, Checksum(packet[1:]))
}

// Data builds a data packet carrying the given values in order.
func (b *Builder) Data(values []Value) ([]byte, error) {
	var body []byte
	for _, v := range values {
		if v.FieldID > 15 {
			return nil, fmt.Errorf("field ID %d out of range (max 15)", v.FieldID)
		}
		var encoded []byte
		var err error
		if v.DataType == DataTypeCoords {
			encoded = EncodeCoordinate(v.Value, v.Longitude)
		} else {
			encoded, err = EncodeValue(v.Value, v.DataType, v.Precision)
			if err != nil {
				return nil, fmt.Errorf("field %d: %w", v.FieldID, err)
			}
		}
		body = append(body, v.FieldID<<4|byte(v.DataType)&0x0F)
		body = append(body, encoded...)
	}

	header, err := b.header(TypeData, len(body))
	if err != nil {
		return nil, err
	}
	return finalize(append(header, body...)), nil
}

// Text builds a text packet carrying the description and unit for one
// telemetry field. Field ID 0 names the device itself.
func (b *Builder) Text(fieldID uint8, description, unit string) ([]byte, error) {
	if len(description) > MaxDescriptionLength {
		return nil, fmt.Errorf("%w: description %q (max %d)", ErrFieldTooLong, description, MaxDescriptionLength)
	}
	if len(unit) > MaxUnitLength {
		return nil, fmt.Errorf("%w: unit %q (max %d)", ErrFieldTooLong, unit, MaxUnitLength)
	}

	body := make([]byte, 0, 2+len(description)+len(unit))
	body = append(body, fieldID, byte(len(description))<<3|byte(len(unit)))
	body = append(body, description...)
	body = append(body, unit...)

	header, err := b.header(TypeText, len(body))
	if err != nil {
		return nil, err
	}
	return finalize(append(header, body...)), nil
}

// Message builds a pilot message packet of the given class.
func (b *Builder) Message(class MessageClass, text string) ([]byte, error) {
	if len(text) > MaxMessageLength {
		return nil, fmt.Errorf("%w: message of %d bytes (max %d)", ErrFieldTooLong, len(text), MaxMessageLength)
	}
	if class < 0 || class > MaxMessageClass {
		return nil, fmt.Errorf("message class %d out of range (max %d)", class, MaxMessageClass)
	}

	body := make([]byte, 0, 2+len(text))
	body = append(body, 0x00, byte(class)<<5|byte(len(text)))
	body = append(body, text...)

	header, err := b.header(TypeMessage, len(body))
	if err != nil {
		return nil, err
	}
	return finalize(append(header, body...)), nil
}

// Alarm builds the 3-byte alarm blob: a Morse letter the transmitter beeps
// out, optionally with a reminder tone.
func Alarm(tone bool, code byte) ([]byte, error) {
	if code < 'A' || code > 'Z' {
		return nil, fmt.Errorf("alarm code %q outside A-Z", code)
	}
	toneByte := byte(0x22)
	if tone {
		toneByte = 0x23
	}
	return []byte{0x02, toneByte, code}, nil
}

// SimpleText encodes a JetiBox screen: 32 characters framed by the 0xFE and
// 0xFF separators with bit 7 cleared, while every text byte has bit 7 set.
// Long text is cropped, short text padded with spaces.
func SimpleText(text string) []byte {
	if len(text) > 32 {
		text = text[:32]
	}

	screen := make([]byte, 0, SimpleTextLength)
	screen = append(screen, 0xFE&^0x80)
	for _, c := range []byte(text) {
		screen = append(screen, c|0x80)
	}
	for i := len(text); i < 32; i++ {
		screen = append(screen, ' '|0x80)
	}
	return append(screen, 0xFF&^0x80)
}
