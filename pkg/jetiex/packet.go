// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package jetiex

import (
	"encoding/binary"
	"fmt"
)

// Packet represents a decoded EX packet.
type Packet struct {
	ptype     PacketType
	length    uint8 // declared 6-bit length field (body + header overhead)
	productID uint16
	deviceID  uint16
	body      []byte
	crc       uint8
	crcValid  bool
}

// Type returns the packet type (text, data or message).
func (p *Packet) Type() PacketType {
	return p.ptype
}

// Length returns the declared length field.
func (p *Packet) Length() uint8 {
	return p.length
}

// ProductID returns the manufacturer/product identifier.
func (p *Packet) ProductID() uint16 {
	return p.productID
}

// DeviceID returns the device identifier.
func (p *Packet) DeviceID() uint16 {
	return p.deviceID
}

// Body returns the type-specific body bytes.
func (p *Packet) Body() []byte {
	return p.body
}

// CRC returns the received CRC8 trailer byte.
func (p *Packet) CRC() uint8 {
	return p.crc
}

// CRCValid reports whether the CRC8 trailer matched. A packet with a bad
// CRC is still returned by Decode so its fields can be inspected for
// diagnostics, but its contents must not be trusted.
func (p *Packet) CRCValid() bool {
	return p.crcValid
}

// Decode parses a complete EX packet, identifier byte through CRC8 trailer.
// Structural problems (truncation, bad identifier, length mismatch) are
// errors; a CRC mismatch only clears the CRCValid flag.
func Decode(raw []byte) (*Packet, error) {
	if len(raw) < headerSize+1 {
		return nil, fmt.Errorf("packet too short: %d bytes (min %d)", len(raw), headerSize+1)
	}
	if len(raw) > MaxPacketLength {
		return nil, fmt.Errorf("packet too long: %d bytes (max %d)", len(raw), MaxPacketLength)
	}
	if raw[0] != Identifier {
		return nil, fmt.Errorf("bad packet identifier: 0x%02X", raw[0])
	}

	length := raw[1] & 0x3F
	body := raw[headerSize : len(raw)-1]
	if int(length) != len(body)+headerOverhead {
		return nil, fmt.Errorf("declared length %d inconsistent with body of %d bytes", length, len(body))
	}

	bodyCopy := make([]byte, len(body))
	copy(bodyCopy, body)

	crc := raw[len(raw)-1]
	return &Packet{
		ptype:     PacketType(raw[1] >> 6),
		length:    length,
		productID: binary.LittleEndian.Uint16(raw[2:4]),
		deviceID:  binary.LittleEndian.Uint16(raw[4:6]),
		body:      bodyCopy,
		crc:       crc,
		crcValid:  crc == Checksum(raw[1:len(raw)-1]),
	}, nil
}

// DataValue is one decoded entry of a data packet body.
type DataValue struct {
	FieldID  uint8
	DataType DataType
	Raw      []byte
}

// ParseDataBody splits a data packet body into its per-value entries.
// Values stay raw since interpreting them needs the data type table of
// the sending device.
func ParseDataBody(body []byte) ([]DataValue, error) {
	var values []DataValue
	for i := 0; i < len(body); {
		id := body[i] >> 4
		dt := DataType(body[i] & 0x0F)
		width := 0
		switch dt {
		case DataTypeInt6:
			width = 1
		case DataTypeInt14:
			width = 2
		case DataTypeInt22, DataTypeDate:
			width = 3
		case DataTypeInt30, DataTypeCoords:
			width = 4
		default:
			return nil, fmt.Errorf("unknown data type %d at offset %d", dt, i)
		}
		if i+1+width > len(body) {
			return nil, fmt.Errorf("truncated value at offset %d", i)
		}
		raw := make([]byte, width)
		copy(raw, body[i+1:i+1+width])
		values = append(values, DataValue{FieldID: id, DataType: dt, Raw: raw})
		i += 1 + width
	}
	return values, nil
}
