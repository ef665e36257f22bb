// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package telemetry

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/aerotelem/jetibridge/pkg/exbus"
	"github.com/aerotelem/jetibridge/pkg/jetiex"
)

// DefaultAnnounceFrames is how many telemetry polls are answered with
// label frames before switching to data. The transmitter only needs the
// labels once, but repeating them covers a transmitter that missed the
// boot-time window.
const DefaultAnnounceFrames = 100

// Responder answers receiver polls from the shared buffer. It runs on the
// bus consumer goroutine and must stay cheap: everything but the packet ID
// and the frame CRC is prebuilt by the producer.
type Responder struct {
	buffer *SharedBuffer
	stats  *exbus.Statistics
	logger *log.Logger

	// AnnounceFrames is the length of the announcement phase in polls.
	AnnounceFrames int

	frameCount   int
	jetiBoxFrame []byte
}

// NewResponder creates a responder serving frames from the given buffer.
func NewResponder(buffer *SharedBuffer, stats *exbus.Statistics, logger *log.Logger) *Responder {
	return &Responder{
		buffer:         buffer,
		stats:          stats,
		logger:         logger.WithPrefix("responder"),
		AnnounceFrames: DefaultAnnounceFrames,
		frameCount:     -1,
	}
}

// SetJetiBoxScreen prebuilds the static menu screen served on JetiBox
// requests. Interactive menus are not implemented; every request gets the
// same two 16-character lines.
func (r *Responder) SetJetiBoxScreen(line1, line2 string) error {
	screen := jetiex.SimpleText(fmt.Sprintf("%-16.16s%-16.16s", line1, line2))
	frame, err := exbus.WrapJetiBox(screen)
	if err != nil {
		return err
	}
	r.jetiBoxFrame = exbus.Finalize(frame)
	return nil
}

// RespondTelemetry answers one telemetry request. During the announcement
// phase it cycles the label frames; afterwards it serves the latest ready
// data frame, or nothing at all when the producer has not finished a cycle
// since the last poll. Stale data is never sent.
func (r *Responder) RespondTelemetry(w io.Writer, req *exbus.Frame) error {
	r.frameCount++

	var frame []byte
	if r.frameCount <= r.AnnounceFrames {
		frame = r.buffer.Label(r.frameCount)
	} else {
		frame = r.buffer.TakeData()
	}
	if frame == nil {
		r.stats.RepliesSkipped++
		return nil
	}

	return r.send(w, frame, req.PacketID())
}

// RespondJetiBox answers a JetiBox request with the static screen.
func (r *Responder) RespondJetiBox(w io.Writer, req *exbus.Frame) error {
	if r.jetiBoxFrame == nil {
		r.stats.RepliesSkipped++
		return nil
	}
	return r.send(w, r.jetiBoxFrame, req.PacketID())
}

func (r *Responder) send(w io.Writer, frame []byte, packetID byte) error {
	reply, err := exbus.PatchPacketID(frame, packetID)
	if err != nil {
		return err
	}

	n, err := w.Write(reply)
	if err != nil {
		return fmt.Errorf("write reply: %w", err)
	}
	if n != len(reply) {
		return fmt.Errorf("short write: %d of %d bytes", n, len(reply))
	}

	r.stats.RepliesSent++
	return nil
}
