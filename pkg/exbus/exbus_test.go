// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package exbus

import (
	"bytes"
	"testing"
)

// telemetryRequest is a complete telemetry poll as a receiver sends it,
// packet ID 6, CRC16 trailer LSB first.
var telemetryRequest = []byte{0x3D, 0x01, 0x08, 0x06, 0x3A, 0x00, 0x98, 0x81}

// channelFrame carries 16 channels, all at 0x1F82 ticks (1.008 ms).
func channelFrame() []byte {
	frame := []byte{0x3E, 0x03, 0x28, 0x06, 0x31, 0x20}
	for i := 0; i < 16; i++ {
		frame = append(frame, 0x82, 0x1F)
	}
	return append(frame, 0x4F, 0xE2)
}

// ============================================================
// CRC Tests
// ============================================================

func TestChecksum_Empty(t *testing.T) {
	if crc := Checksum(nil); crc != 0 {
		t.Errorf("CRC of empty data should be 0, got 0x%04X", crc)
	}
}

func TestChecksum_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint16
	}{
		{
			name:     "telemetry request header",
			data:     []byte{0x3D, 0x01, 0x08, 0x06, 0x3A, 0x00},
			expected: 0x8198,
		},
		{
			name:     "16-channel frame body",
			data:     channelFrame()[:38],
			expected: 0xE24F,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if crc := Checksum(tt.data); crc != tt.expected {
				t.Errorf("CRC mismatch: expected 0x%04X, got 0x%04X", tt.expected, crc)
			}
		})
	}
}

// ============================================================
// ParseFrame Tests
// ============================================================

func TestParseFrame_TelemetryRequest(t *testing.T) {
	frame, err := ParseFrame(telemetryRequest)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if frame.Kind() != KindTelemetryRequest {
		t.Errorf("Expected TELEMETRY_REQUEST, got %s", frame.Kind())
	}
	if frame.PacketID() != 0x06 {
		t.Errorf("Expected packet ID 6, got %d", frame.PacketID())
	}
	if len(frame.Payload()) != 0 {
		t.Errorf("Expected empty payload, got %d bytes", len(frame.Payload()))
	}
	if !frame.AllowsReply() {
		t.Error("Request with sub-header 0x01 must allow a reply")
	}
	if frame.CRC() != 0x8198 {
		t.Errorf("Expected CRC 0x8198, got 0x%04X", frame.CRC())
	}
}

func TestParseFrame_ChannelData(t *testing.T) {
	frame, err := ParseFrame(channelFrame())
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if frame.Kind() != KindChannelData {
		t.Errorf("Expected CHANNEL_DATA, got %s", frame.Kind())
	}
	if frame.AllowsReply() {
		t.Error("Channel frame with sub-header 0x03 must not allow a reply")
	}
	if len(frame.Payload()) != 32 {
		t.Errorf("Expected 32 payload bytes, got %d", len(frame.Payload()))
	}
}

func TestParseFrame_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"too short", telemetryRequest[:5]},
		{"declared length mismatch", append([]byte{0x3D, 0x01, 0x09, 0x06, 0x3A, 0x00}, 0x98, 0x81)},
		{"payload length inconsistent", Finalize([]byte{0x3D, 0x01, 0x08, 0x06, 0x3A, 0x01})},
		{"corrupted CRC", append(bytes.Clone(telemetryRequest[:7]), 0x00)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFrame(tt.raw); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

// ============================================================
// Channel Parsing Tests
// ============================================================

func TestParseChannels(t *testing.T) {
	frame, err := ParseFrame(channelFrame())
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	channels, err := ParseChannels(frame)
	if err != nil {
		t.Fatalf("ParseChannels error: %v", err)
	}
	if len(channels) != 16 {
		t.Fatalf("Expected 16 channels, got %d", len(channels))
	}
	for i, ch := range channels {
		if ch != 0x1F82 {
			t.Errorf("Channel %d: expected 0x1F82, got 0x%04X", i+1, uint16(ch))
		}
	}

	ms := channels[0].Milliseconds()
	if ms < 1.008 || ms > 1.009 {
		t.Errorf("Expected ~1.008 ms pulse, got %.5f", ms)
	}
}

func TestParseChannels_WrongKind(t *testing.T) {
	frame, err := ParseFrame(telemetryRequest)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if _, err := ParseChannels(frame); err == nil {
		t.Error("Expected error for non-channel frame")
	}
}

// ============================================================
// Statistics Tests
// ============================================================

func TestStatistics_Counting(t *testing.T) {
	stats := NewStatistics()

	req, _ := ParseFrame(telemetryRequest)
	ch, _ := ParseFrame(channelFrame())

	stats.CountFrame(req)
	stats.CountFrame(ch)
	stats.CountFrame(ch)

	if stats.TotalFrames != 3 {
		t.Errorf("Expected 3 total frames, got %d", stats.TotalFrames)
	}
	if stats.TelemetryReq != 1 {
		t.Errorf("Expected 1 telemetry request, got %d", stats.TelemetryReq)
	}
	if stats.ChannelData != 2 {
		t.Errorf("Expected 2 channel frames, got %d", stats.ChannelData)
	}
}

func TestStatistics_ErrorClassification(t *testing.T) {
	stats := NewStatistics()

	d := NewDecoder()
	corrupted := bytes.Clone(telemetryRequest)
	corrupted[7] = 0x00
	for _, b := range corrupted {
		if _, err := d.DecodeByte(b); err != nil {
			stats.CountError(err)
		}
	}
	for _, b := range []byte{0x3D, 0x01, 0x80} {
		if _, err := d.DecodeByte(b); err != nil {
			stats.CountError(err)
		}
	}

	if stats.CRCErrors != 1 {
		t.Errorf("Expected 1 CRC error, got %d", stats.CRCErrors)
	}
	if stats.FramingErrors != 1 {
		t.Errorf("Expected 1 framing error, got %d", stats.FramingErrors)
	}
}

func TestStatistics_Reset(t *testing.T) {
	stats := NewStatistics()
	req, _ := ParseFrame(telemetryRequest)
	stats.CountFrame(req)
	stats.Reset()
	if stats.TotalFrames != 0 {
		t.Errorf("Expected 0 frames after reset, got %d", stats.TotalFrames)
	}
}
