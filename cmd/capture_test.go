// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package cmd

import (
	"bytes"
	"testing"

	"github.com/aerotelem/jetibridge/pkg/exbus"
)

func TestTrimAccumulated_UnderCapUnchanged(t *testing.T) {
	buf := bytes.Repeat([]byte{0x55}, 2*exbus.MaxFrameLength)
	if got := trimAccumulated(buf); len(got) != len(buf) {
		t.Errorf("Expected %d bytes untouched, got %d", len(buf), len(got))
	}
}

func TestTrimAccumulated_KeepsTail(t *testing.T) {
	buf := make([]byte, 0, 300)
	for i := 0; i < 300; i++ {
		buf = append(buf, byte(i))
	}
	want := bytes.Clone(buf[300-exbus.MaxFrameLength:])

	got := trimAccumulated(buf)
	if len(got) != exbus.MaxFrameLength {
		t.Fatalf("Expected %d bytes, got %d", exbus.MaxFrameLength, len(got))
	}
	if !bytes.Equal(got, want) {
		t.Error("Trim must keep the most recent bytes")
	}
}

func TestTrimAccumulated_BoundedUnderNoise(t *testing.T) {
	// A stream that never completes a frame must not grow the
	// accumulator without bound.
	var buf []byte
	for i := 0; i < 10000; i++ {
		buf = trimAccumulated(append(buf, 0xFF))
		if len(buf) > 2*exbus.MaxFrameLength {
			t.Fatalf("Accumulator grew to %d bytes at iteration %d", len(buf), i)
		}
	}
}
