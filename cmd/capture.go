// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/aerotelem/jetibridge/pkg/capture"
	"github.com/aerotelem/jetibridge/pkg/exbus"
)

var (
	captureOutput   string
	captureDuration time.Duration
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Record the bus to a capture file",
	Long: `Record decoded EX-Bus frames to a CBOR capture file for offline
analysis with the replay command.

Each decoded frame is stored with its arrival timestamp and raw wire
bytes. Recording runs until Ctrl+C or --duration elapses.`,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)
	captureCmd.Flags().StringVarP(&captureOutput, "output", "o", "", "Capture file to write (required)")
	captureCmd.Flags().DurationVarP(&captureDuration, "duration", "d", 0, "Stop after this long (0 = until interrupted)")
	captureCmd.MarkFlagRequired("output")
}

func runCapture(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	file, err := os.Create(captureOutput)
	if err != nil {
		return fmt.Errorf("create capture file: %w", err)
	}
	defer file.Close()

	fmt.Printf("JetiBridge - Capture\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Writing to: %s\n", captureOutput)
	if captureDuration > 0 {
		fmt.Printf("Duration: %s\n", captureDuration)
	}
	fmt.Printf("Press Ctrl+C to stop\n\n")

	// Interrupt or deadline unblocks the read loop by closing the connection
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		if captureDuration > 0 {
			select {
			case <-sigCh:
			case <-time.After(captureDuration):
			case <-done:
				return
			}
		} else {
			select {
			case <-sigCh:
			case <-done:
				return
			}
		}
		conn.Close()
	}()
	defer close(done)

	writer := capture.NewWriter(file)
	decoder := exbus.NewDecoder()
	decoder.AcceptReplies = true
	stats := exbus.NewStatistics()
	buf := make([]byte, 128)
	frameBytes := make([]byte, 0, exbus.MaxFrameLength)

	for {
		n, err := conn.Read(buf)
		if err != nil {
			break
		}

		for i := 0; i < n; i++ {
			frameBytes = trimAccumulated(append(frameBytes, buf[i]))
			frame, decodeErr := decoder.DecodeByte(buf[i])
			if decodeErr != nil {
				stats.CountError(decodeErr)
				frameBytes = frameBytes[:0]
				continue
			}
			if frame == nil {
				continue
			}
			stats.CountFrame(frame)

			// Frame boundary: everything accumulated since the last one
			// belongs to this frame (plus any noise that preceded it).
			raw := make([]byte, len(frameBytes))
			copy(raw, frameBytes)
			frameBytes = frameBytes[:0]

			rec := capture.Record{
				Timestamp: frame.Timestamp(),
				Raw:       raw,
				Kind:      frame.Kind().String(),
			}
			if err := writer.Write(rec); err != nil {
				log.Error("write capture record", "err", err)
				fmt.Print(stats.String())
				return err
			}
		}
	}

	fmt.Print(stats.String())
	fmt.Printf("Capture written to %s\n", captureOutput)
	return nil
}

// trimAccumulated bounds the undecodable input kept ahead of a frame
// boundary, so a bus that never yields a frame (wrong baud, unplugged
// wire) cannot grow the accumulator without bound. The decoder holds at
// most one frame's worth of partial input, so keeping the last
// MaxFrameLength bytes never discards a frame in progress.
func trimAccumulated(buf []byte) []byte {
	if len(buf) <= 2*exbus.MaxFrameLength {
		return buf
	}
	tail := buf[len(buf)-exbus.MaxFrameLength:]
	return append(buf[:0], tail...)
}
