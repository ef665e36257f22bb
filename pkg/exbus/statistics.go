// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package exbus

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Statistics tracks bus health: frame counts per kind, CRC and framing
// errors, and reply activity. Malformed frames are never surfaced beyond
// these counters, so this is the main diagnostic window into the bus.
type Statistics struct {
	StartTime time.Time

	TotalFrames  uint64
	ChannelData  uint64
	TelemetryReq uint64
	JetiBoxReq   uint64
	OtherFrames  uint64

	CRCErrors     uint64
	FramingErrors uint64

	RepliesSent    uint64
	RepliesSkipped uint64 // telemetry requests with no data ready

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // errors/sec
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{StartTime: time.Now()}
}

// CountFrame records a successfully decoded frame.
func (s *Statistics) CountFrame(f *Frame) {
	s.TotalFrames++
	switch f.Kind() {
	case KindChannelData:
		s.ChannelData++
	case KindTelemetryRequest:
		s.TelemetryReq++
	case KindJetiBoxRequest:
		s.JetiBoxReq++
	default:
		s.OtherFrames++
	}
}

// CountError records a decode failure.
func (s *Statistics) CountError(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, ErrCRCMismatch) {
		s.CRCErrors++
	} else {
		s.FramingErrors++
	}
}

// CalculateRates recomputes the frame and error rates.
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.TotalFrames) / elapsed
		s.ErrorRate = float64(s.CRCErrors+s.FramingErrors) / elapsed
	}
}

// String returns a formatted statistics summary.
func (s *Statistics) String() string {
	s.CalculateRates()

	elapsed := time.Since(s.StartTime)

	var b strings.Builder
	fmt.Fprintf(&b, "=== EX-Bus Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	fmt.Fprintf(&b, "Total Frames:    %8d\n", s.TotalFrames)
	fmt.Fprintf(&b, "  Channel Data:  %8d\n", s.ChannelData)
	fmt.Fprintf(&b, "  Telemetry Req: %8d\n", s.TelemetryReq)
	if s.JetiBoxReq > 0 {
		fmt.Fprintf(&b, "  JetiBox Req:   %8d\n", s.JetiBoxReq)
	}
	if s.OtherFrames > 0 {
		fmt.Fprintf(&b, "  Other:         %8d\n", s.OtherFrames)
	}
	if s.CRCErrors > 0 {
		fmt.Fprintf(&b, "CRC Errors:      %8d\n", s.CRCErrors)
	}
	if s.FramingErrors > 0 {
		fmt.Fprintf(&b, "Framing Errors:  %8d\n", s.FramingErrors)
	}
	fmt.Fprintf(&b, "Replies Sent:    %8d\n", s.RepliesSent)
	if s.RepliesSkipped > 0 {
		fmt.Fprintf(&b, "Replies Skipped: %8d\n", s.RepliesSkipped)
	}
	fmt.Fprintf(&b, "Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	fmt.Fprintf(&b, "Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	b.WriteString("======================================\n")
	return b.String()
}

// Reset zeroes all counters and restarts the rate window.
func (s *Statistics) Reset() {
	*s = Statistics{StartTime: time.Now()}
}
