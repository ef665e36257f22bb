// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package jetiex

// Checksum computes the CRC8 value of an EX packet section (poly 0x07,
// MSB first, init 0). Per the EX specification it covers the packet from
// the type/length byte onward, skipping only the leading identifier.
func Checksum(data []byte) uint8 {
	var crc uint8
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crcPolynomial ^ (crc << 1)
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
