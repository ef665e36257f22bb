// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aerotelem/jetibridge/pkg/capture"
	"github.com/aerotelem/jetibridge/pkg/exbus"
)

var (
	replayTiming bool
	replayQuiet  bool
)

var replayCmd = &cobra.Command{
	Use:   "replay <capture-file>",
	Short: "Replay a capture file through the decoder",
	Long: `Read a capture file written by the capture command and feed its raw
bytes back through the frame decoder, printing each frame the way the
monitor command would.

With --timing the original inter-record delays are reproduced; otherwise
the capture replays as fast as it decodes.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().BoolVar(&replayTiming, "timing", false, "Reproduce original record timing")
	replayCmd.Flags().BoolVarP(&replayQuiet, "quiet", "q", false, "Suppress per-frame output, print only statistics")
}

func runReplay(cmd *cobra.Command, args []string) error {
	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open capture file: %w", err)
	}
	defer file.Close()

	reader := capture.NewReader(file)
	decoder := exbus.NewDecoder()
	decoder.AcceptReplies = true
	decoder.IdleTimeout = 0 // capture timestamps span seconds, not bus gaps
	stats := exbus.NewStatistics()

	var prev time.Time
	records := 0
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		records++

		if replayTiming && !prev.IsZero() {
			if gap := rec.Timestamp.Sub(prev); gap > 0 {
				time.Sleep(gap)
			}
		}
		prev = rec.Timestamp

		for _, b := range rec.Raw {
			frame, decodeErr := decoder.DecodeByte(b)
			if decodeErr != nil {
				stats.CountError(decodeErr)
				continue
			}
			if frame == nil {
				continue
			}
			stats.CountFrame(frame)
			if !replayQuiet {
				fmt.Print(exbus.FormatFrame(frame))
			}
		}
	}

	fmt.Printf("Replayed %d records\n", records)
	fmt.Print(stats.String())
	return nil
}
