// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package exbus

import (
	"encoding/binary"
	"fmt"
)

// ChannelValue is one servo channel value in wire units of 1/8 µs.
type ChannelValue uint16

// Milliseconds returns the channel pulse width in milliseconds
// (1.5 ms is the usual stick center).
func (c ChannelValue) Milliseconds() float64 {
	return float64(c) / channelTick
}

// ParseChannels extracts the channel values from a channel-data frame.
// The payload holds one little-endian 16-bit value per channel.
func ParseChannels(f *Frame) ([]ChannelValue, error) {
	if f.Kind() != KindChannelData {
		return nil, fmt.Errorf("not a channel-data frame: %s", f.Kind())
	}
	payload := f.Payload()
	if len(payload)%2 != 0 {
		return nil, fmt.Errorf("odd channel payload length: %d", len(payload))
	}

	channels := make([]ChannelValue, len(payload)/2)
	for i := range channels {
		channels[i] = ChannelValue(binary.LittleEndian.Uint16(payload[i*2:]))
	}
	return channels, nil
}
