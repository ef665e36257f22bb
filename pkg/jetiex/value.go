// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package jetiex

import (
	"errors"
	"fmt"
	"math"
)

// ErrValueOutOfRange is returned when a scaled value exceeds the magnitude
// bits of its data type. The protocol gives no defined behavior for this,
// so it is rejected at build time instead of silently truncated.
var ErrValueOutOfRange = errors.New("value out of range for data type")

// ErrPrecisionOutOfRange is returned for a decimal-point position outside
// the 0-2 range the transmitters understand.
var ErrPrecisionOutOfRange = errors.New("precision out of range (0-2)")

// magnitude bounds per data type, symmetric per the EX specification
const (
	maxInt6  = 31
	maxInt14 = 8191
	maxInt22 = 2097151
	maxInt30 = 536870911
)

// EncodeValue encodes one telemetry value into the EX wire form: the value
// is scaled by 10^precision, rounded, and packed little-endian as a
// two's-complement integer whose most significant byte carries the sign bit
// and the 2-bit decimal-point position. Zero always encodes with sign 0.
//
// Data types Int6, Int14, Int22 and Int30 are supported here; coordinates
// use EncodeCoordinate and dates EncodeDate, which pack differently.
func EncodeValue(value float64, dataType DataType, precision uint8) ([]byte, error) {
	if precision > 2 {
		return nil, ErrPrecisionOutOfRange
	}

	rounded := math.Round(value * math.Pow10(int(precision)))
	if rounded < -maxInt30 || rounded > maxInt30 || math.IsNaN(rounded) {
		return nil, fmt.Errorf("%w: %g does not fit any type", ErrValueOutOfRange, value)
	}
	scaled := int32(rounded)
	sign := byte(0)
	if scaled < 0 {
		sign = 1
	}
	prec := byte(precision)

	switch dataType {
	case DataTypeInt6:
		if scaled < -maxInt6 || scaled > maxInt6 {
			return nil, fmt.Errorf("%w: %d exceeds ±%d (int6)", ErrValueOutOfRange, scaled, maxInt6)
		}
		return []byte{byte(scaled)&0x1F | sign<<7 | prec<<5}, nil

	case DataTypeInt14:
		if scaled < -maxInt14 || scaled > maxInt14 {
			return nil, fmt.Errorf("%w: %d exceeds ±%d (int14)", ErrValueOutOfRange, scaled, maxInt14)
		}
		return []byte{
			byte(scaled),
			byte(scaled>>8)&0x1F | sign<<7 | prec<<5,
		}, nil

	case DataTypeInt22:
		if scaled < -maxInt22 || scaled > maxInt22 {
			return nil, fmt.Errorf("%w: %d exceeds ±%d (int22)", ErrValueOutOfRange, scaled, maxInt22)
		}
		return []byte{
			byte(scaled),
			byte(scaled >> 8),
			byte(scaled>>16)&0x1F | sign<<7 | prec<<5,
		}, nil

	case DataTypeInt30:
		if scaled < -maxInt30 || scaled > maxInt30 {
			return nil, fmt.Errorf("%w: %d exceeds ±%d (int30)", ErrValueOutOfRange, scaled, maxInt30)
		}
		return []byte{
			byte(scaled),
			byte(scaled >> 8),
			byte(scaled >> 16),
			byte(scaled>>24)&0x1F | sign<<7 | prec<<5,
		}, nil

	default:
		return nil, fmt.Errorf("data type %d has no sign/precision packing", dataType)
	}
}

// DecodeValue is the inverse of EncodeValue. It returns the decoded value
// and the decimal-point position found in the top bits.
func DecodeValue(data []byte, dataType DataType) (float64, uint8, error) {
	var width, bits int
	switch dataType {
	case DataTypeInt6:
		width, bits = 1, 6
	case DataTypeInt14:
		width, bits = 2, 14
	case DataTypeInt22:
		width, bits = 3, 22
	case DataTypeInt30:
		width, bits = 4, 30
	default:
		return 0, 0, fmt.Errorf("data type %d has no sign/precision packing", dataType)
	}
	if len(data) != width {
		return 0, 0, fmt.Errorf("data type %d needs %d bytes, got %d", dataType, width, len(data))
	}

	msb := data[width-1]
	precision := msb >> 5 & 0x3
	negative := msb&0x80 != 0

	raw := int64(msb & 0x1F)
	for i := width - 2; i >= 0; i-- {
		raw = raw<<8 | int64(data[i])
	}
	if negative {
		raw -= 1 << (bits - 1)
	}

	return float64(raw) / math.Pow10(int(precision)), precision, nil
}

// EncodeDate packs a date or time value (data type 5). For a time the bytes
// are second/minute/hour, for a date day/month/year; bit 5 of the third
// byte distinguishes them (1 = date).
func EncodeDate(lo, mid, hi byte, isDate bool) []byte {
	flag := byte(0)
	if isDate {
		flag = 1 << 5
	}
	return []byte{lo, mid, hi | flag}
}

// EncodeCoordinate packs a decimal-degrees GPS coordinate into the 4-byte
// EX form (data type 9): minutes*1000 in the low 16 bits, whole degrees
// above them, and hemisphere/axis flags in the top byte.
func EncodeCoordinate(degrees float64, longitude bool) []byte {
	whole, frac := math.Modf(math.Abs(degrees))
	deg := uint16(whole)
	minutes := uint16(frac * 0.6 * 100000)

	ex := byte(deg>>8) & 0x01
	if longitude {
		ex |= 1 << 5
	}
	if degrees < 0 {
		ex |= 1 << 6
	}

	return []byte{
		byte(minutes),
		byte(minutes >> 8),
		byte(deg),
		ex,
	}
}

// DecodeCoordinate is the inverse of EncodeCoordinate.
func DecodeCoordinate(data []byte) (degrees float64, longitude bool, err error) {
	if len(data) != 4 {
		return 0, false, fmt.Errorf("coordinate needs 4 bytes, got %d", len(data))
	}
	minutes := uint16(data[0]) | uint16(data[1])<<8
	deg := uint16(data[2]) | uint16(data[3]&0x01)<<8

	degrees = float64(deg) + float64(minutes)/1000.0/60.0
	if data[3]&(1<<6) != 0 {
		degrees = -degrees
	}
	return degrees, data[3]&(1<<5) != 0, nil
}
