// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package exbus

// Checksum computes the CRC16-CCITT value of an EX-Bus frame section.
// This is the bit-reflected form (poly 0x8408, init 0) prescribed by the
// EX-Bus specification; on the wire the result is transmitted LSB first.
func Checksum(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ crcPolynomial
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}
