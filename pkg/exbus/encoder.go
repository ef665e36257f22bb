// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package exbus

import (
	"encoding/binary"
	"fmt"
)

// Wrap builds a slave reply frame around the given payload, without the CRC
// trailer. The packet ID field is set to the 0x00 placeholder: the real ID is
// only known once a request arrives, so prebuilt frames are patched with
// PatchPacketID at send time.
func Wrap(dataID byte, payload []byte) ([]byte, error) {
	if len(payload)+FrameOverhead > MaxFrameLength {
		return nil, fmt.Errorf("payload too large: %d bytes (max %d)", len(payload), MaxFrameLength-FrameOverhead)
	}

	frame := make([]byte, 0, len(payload)+FrameOverhead)
	frame = append(frame,
		HeaderReply,
		SubHeaderAnswerSlot,
		byte(len(payload)+FrameOverhead),
		0x00,
		dataID,
		byte(len(payload)),
	)
	frame = append(frame, payload...)
	return frame, nil
}

// WrapTelemetry builds a telemetry reply frame (data ID 0x3A) around an EX
// packet, without the CRC trailer.
func WrapTelemetry(exPacket []byte) ([]byte, error) {
	return Wrap(DataIDTelemetry, exPacket)
}

// WrapJetiBox builds a JetiBox menu reply frame (data ID 0x3B) around a
// 34-byte simple-text screen, without the CRC trailer.
func WrapJetiBox(screen []byte) ([]byte, error) {
	return Wrap(DataIDJetiBox, screen)
}

// Finalize appends the CRC16 trailer, LSB first, over all preceding bytes.
func Finalize(frame []byte) []byte {
	crc := Checksum(frame)
	return binary.LittleEndian.AppendUint16(frame, crc)
}

// PatchPacketID returns a copy of a finalized frame with the packet ID byte
// replaced and the CRC16 trailer recomputed. The ID byte participates in the
// checksum, so the trailer from Finalize is never valid after a patch.
func PatchPacketID(frame []byte, id byte) ([]byte, error) {
	if len(frame) < MinFrameLength {
		return nil, fmt.Errorf("frame too short to patch: %d bytes", len(frame))
	}
	patched := make([]byte, len(frame))
	copy(patched, frame)
	patched[3] = id
	crc := Checksum(patched[:len(patched)-2])
	binary.LittleEndian.PutUint16(patched[len(patched)-2:], crc)
	return patched, nil
}
