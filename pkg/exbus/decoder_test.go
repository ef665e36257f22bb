// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package exbus

import (
	"bytes"
	"testing"
	"time"
)

// feed pushes bytes through the decoder, collecting frames and errors.
func feed(d *Decoder, data []byte) (frames []*Frame, errs []error) {
	for _, b := range data {
		frame, err := d.DecodeByte(b)
		if err != nil {
			errs = append(errs, err)
		}
		if frame != nil {
			frames = append(frames, frame)
		}
	}
	return frames, errs
}

// ============================================================
// Happy Path
// ============================================================

func TestDecoder_TelemetryRequest(t *testing.T) {
	d := NewDecoder()
	frames, errs := feed(d, telemetryRequest)

	if len(errs) != 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if len(frames) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(frames))
	}
	if frames[0].Kind() != KindTelemetryRequest {
		t.Errorf("Expected TELEMETRY_REQUEST, got %s", frames[0].Kind())
	}
	if frames[0].PacketID() != 0x06 {
		t.Errorf("Expected packet ID 6, got %d", frames[0].PacketID())
	}
}

func TestDecoder_BackToBackFrames(t *testing.T) {
	d := NewDecoder()
	stream := append(channelFrame(), telemetryRequest...)
	frames, errs := feed(d, stream)

	if len(errs) != 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if len(frames) != 2 {
		t.Fatalf("Expected 2 frames, got %d", len(frames))
	}
	if frames[0].Kind() != KindChannelData || frames[1].Kind() != KindTelemetryRequest {
		t.Errorf("Wrong frame kinds: %s, %s", frames[0].Kind(), frames[1].Kind())
	}
}

// ============================================================
// Resynchronization
// ============================================================

func TestDecoder_GarbageBeforeFrame(t *testing.T) {
	d := NewDecoder()
	stream := append([]byte{0x00, 0xFF, 0x55, 0xAA}, telemetryRequest...)
	frames, errs := feed(d, stream)

	if len(errs) != 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if len(frames) != 1 {
		t.Fatalf("Expected 1 frame after garbage, got %d", len(frames))
	}
}

func TestDecoder_Header2Mismatch_Resets(t *testing.T) {
	// A lone header byte followed by a complete frame: the second 0x3D
	// fails the sub-header check but must restart header matching, not
	// be treated as the length byte.
	d := NewDecoder()
	stream := append([]byte{0x3D}, telemetryRequest...)
	frames, errs := feed(d, stream)

	if len(errs) != 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if len(frames) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(frames))
	}
	if frames[0].PacketID() != 0x06 {
		t.Errorf("Expected packet ID 6, got %d", frames[0].PacketID())
	}
}

func TestDecoder_Header2Mismatch_PlainGarbage(t *testing.T) {
	d := NewDecoder()
	stream := append([]byte{0x3D, 0x42}, telemetryRequest...)
	frames, _ := feed(d, stream)
	if len(frames) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(frames))
	}
}

func TestDecoder_RecoversAfterError(t *testing.T) {
	corrupted := bytes.Clone(telemetryRequest)
	corrupted[6] = 0x00 // break the CRC

	d := NewDecoder()
	stream := append(corrupted, telemetryRequest...)
	frames, errs := feed(d, stream)

	if len(errs) != 1 {
		t.Fatalf("Expected 1 error, got %d: %v", len(errs), errs)
	}
	if len(frames) != 1 {
		t.Fatalf("Expected 1 frame after recovery, got %d", len(frames))
	}
}

// ============================================================
// Malformed Frames
// ============================================================

func TestDecoder_InvalidLength(t *testing.T) {
	tests := []struct {
		name   string
		length byte
	}{
		{"over protocol max", 0x80},
		{"below minimum", 0x05},
		{"zero", 0x00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder()
			_, errs := feed(d, []byte{0x3D, 0x01, tt.length})
			if len(errs) != 1 {
				t.Fatalf("Expected 1 error, got %d", len(errs))
			}

			// decoder must be ready for the next frame
			frames, errs := feed(d, telemetryRequest)
			if len(errs) != 0 || len(frames) != 1 {
				t.Errorf("Decoder did not recover: frames=%d errs=%v", len(frames), errs)
			}
		})
	}
}

func TestDecoder_CRCMismatch(t *testing.T) {
	corrupted := bytes.Clone(telemetryRequest)
	corrupted[7] ^= 0xFF

	d := NewDecoder()
	frames, errs := feed(d, corrupted)
	if len(frames) != 0 {
		t.Error("Corrupted frame must not be delivered")
	}
	if len(errs) != 1 {
		t.Fatalf("Expected 1 error, got %d", len(errs))
	}
}

func TestDecoder_PayloadLengthInconsistent(t *testing.T) {
	// Valid CRC, declared length 8, but payload length byte says 1.
	raw := Finalize([]byte{0x3D, 0x01, 0x08, 0x06, 0x3A, 0x01})

	d := NewDecoder()
	frames, errs := feed(d, raw)
	if len(frames) != 0 || len(errs) != 1 {
		t.Fatalf("Expected rejection, got frames=%d errs=%v", len(frames), errs)
	}
}

// ============================================================
// Idle Timeout
// ============================================================

func TestDecoder_IdleTimeout_DropsPartialFrame(t *testing.T) {
	d := NewDecoder()
	d.IdleTimeout = time.Millisecond

	// Start a frame that never completes, then pause longer than the
	// inter-byte budget and send a whole new frame.
	feed(d, []byte{0x3D, 0x01, 0x20, 0x06})
	time.Sleep(5 * time.Millisecond)

	frames, errs := feed(d, telemetryRequest)
	if len(errs) != 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if len(frames) != 1 {
		t.Fatalf("Expected 1 frame after stale partial, got %d", len(frames))
	}
}

func TestDecoder_IdleTimeout_Disabled(t *testing.T) {
	d := NewDecoder()
	d.IdleTimeout = 0

	feed(d, telemetryRequest[:4])
	time.Sleep(5 * time.Millisecond)
	frames, errs := feed(d, telemetryRequest[4:])
	if len(errs) != 0 || len(frames) != 1 {
		t.Fatalf("Split frame must survive with timeout disabled: frames=%d errs=%v", len(frames), errs)
	}
}

// ============================================================
// Reply Frames
// ============================================================

func TestDecoder_ReplyFramesIgnoredByDefault(t *testing.T) {
	reply := Finalize([]byte{HeaderReply, 0x01, 0x08, 0x06, DataIDTelemetry, 0x00})

	d := NewDecoder()
	frames, errs := feed(d, reply)
	if len(frames) != 0 || len(errs) != 0 {
		t.Errorf("Slave frames must be inter-frame noise by default: frames=%d errs=%v", len(frames), errs)
	}
}

func TestDecoder_AcceptReplies(t *testing.T) {
	reply := Finalize([]byte{HeaderReply, 0x01, 0x08, 0x06, DataIDTelemetry, 0x00})

	d := NewDecoder()
	d.AcceptReplies = true
	frames, errs := feed(d, reply)
	if len(errs) != 0 {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	if len(frames) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(frames))
	}
	if frames[0].Kind() != KindTelemetryReply {
		t.Errorf("Expected TELEMETRY_REPLY, got %s", frames[0].Kind())
	}
}
