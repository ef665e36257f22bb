// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package exbus

import (
	"bytes"
	"testing"
)

// exDataPacket is a complete EX data packet (product 0xA8A1, device
// 0x555D, two Int14 values) used as wrapping payload.
var exDataPacket = []byte{
	0x0F, 0x4C, 0xA1, 0xA8, 0x5D, 0x55, 0x00,
	0x11, 0xD2, 0x24,
	0x21, 0x19, 0xDF,
	0x24,
}

func TestWrapTelemetry_Golden(t *testing.T) {
	frame, err := WrapTelemetry(exDataPacket)
	if err != nil {
		t.Fatalf("Wrap error: %v", err)
	}
	frame = Finalize(frame)

	expected := append([]byte{0x3B, 0x01, 0x16, 0x00, 0x3A, 0x0E}, exDataPacket...)
	expected = append(expected, 0x23, 0x20)
	if !bytes.Equal(frame, expected) {
		t.Errorf("Frame mismatch:\n  expected % X\n  got      % X", expected, frame)
	}
}

func TestWrap_RoundTrip(t *testing.T) {
	frame, err := WrapJetiBox(bytes.Repeat([]byte{0xAA}, 34))
	if err != nil {
		t.Fatalf("Wrap error: %v", err)
	}
	frame = Finalize(frame)

	d := NewDecoder()
	d.AcceptReplies = true
	frames, errs := feed(d, frame)
	if len(errs) != 0 || len(frames) != 1 {
		t.Fatalf("Round trip failed: frames=%d errs=%v", len(frames), errs)
	}
	if frames[0].Kind() != KindJetiBoxReply {
		t.Errorf("Expected JETIBOX_REPLY, got %s", frames[0].Kind())
	}
	if len(frames[0].Payload()) != 34 {
		t.Errorf("Expected 34 payload bytes, got %d", len(frames[0].Payload()))
	}
}

func TestWrap_PayloadTooLarge(t *testing.T) {
	if _, err := Wrap(DataIDTelemetry, make([]byte, MaxFrameLength-FrameOverhead+1)); err == nil {
		t.Error("Expected error for oversized payload")
	}
}

func TestPatchPacketID_Golden(t *testing.T) {
	frame, err := WrapTelemetry(exDataPacket)
	if err != nil {
		t.Fatalf("Wrap error: %v", err)
	}
	frame = Finalize(frame)

	patched, err := PatchPacketID(frame, 0x06)
	if err != nil {
		t.Fatalf("Patch error: %v", err)
	}

	if patched[3] != 0x06 {
		t.Errorf("Expected packet ID 6, got %d", patched[3])
	}
	if patched[len(patched)-2] != 0x01 || patched[len(patched)-1] != 0x40 {
		t.Errorf("Expected recomputed CRC bytes 01 40, got %02X %02X",
			patched[len(patched)-2], patched[len(patched)-1])
	}

	// the original must be untouched
	if frame[3] != 0x00 {
		t.Error("PatchPacketID must not modify the input frame")
	}

	// and the patched frame must parse cleanly
	if _, err := ParseFrame(patched); err != nil {
		t.Errorf("Patched frame invalid: %v", err)
	}
}

func TestPatchPacketID_TooShort(t *testing.T) {
	if _, err := PatchPacketID([]byte{0x3B, 0x01}, 0x06); err == nil {
		t.Error("Expected error for undersized frame")
	}
}
