// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package exbus

import (
	"fmt"
	"strings"
)

// FormatFrame formats a frame into a human-readable multi-line string.
func FormatFrame(f *Frame) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s id=%d len=%d data=%d\n",
		f.timestamp.Format("15:04:05.000"), f.Kind(), f.packetID, f.length, len(f.payload))

	switch f.Kind() {
	case KindChannelData:
		channels, err := ParseChannels(f)
		if err != nil {
			fmt.Fprintf(&b, "  %v\n", err)
			break
		}
		for i, ch := range channels {
			fmt.Fprintf(&b, "  Channel %2d: %.3f ms\n", i+1, ch.Milliseconds())
		}
	case KindTelemetryRequest, KindJetiBoxRequest:
		// requests carry no payload worth dumping
	default:
		if len(f.payload) > 0 {
			fmt.Fprintf(&b, "  Payload: %s\n", hexDump(f.payload))
		}
	}

	fmt.Fprintf(&b, "  CRC: 0x%04X\n", f.crc)
	return b.String()
}

func hexDump(data []byte) string {
	parts := make([]string, len(data))
	for i, v := range data {
		parts[i] = fmt.Sprintf("%02X", v)
	}
	return strings.Join(parts, " ")
}
