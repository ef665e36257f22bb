// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/aerotelem/jetibridge/pkg/exbus"
)

var monitorStatsInterval int

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Display decoded EX-Bus frames in human-readable format",
	Long: `Continuously decode and display EX-Bus frames as they arrive.

Each frame is shown with its timestamp, kind, packet ID and payload;
channel-data frames are expanded to per-channel pulse widths. Malformed
frames are counted but not displayed unless --stats is given.

Supports both serial and WebSocket connections.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().IntVar(&monitorStatsInterval, "stats", 0, "Print statistics every N seconds (0 = never)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("JetiBridge - EX-Bus Monitor\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	decoder := exbus.NewDecoder()
	decoder.AcceptReplies = true
	stats := exbus.NewStatistics()
	buf := make([]byte, 128)

	var nextStats time.Time
	if monitorStatsInterval > 0 {
		nextStats = time.Now().Add(time.Duration(monitorStatsInterval) * time.Second)
	}

	for {
		n, err := conn.Read(buf)
		if err != nil {
			if err == ErrConnectionClosed {
				log.Info("connection closed")
				return nil
			}
			log.Error("read failed", "err", err)
			continue
		}

		for i := 0; i < n; i++ {
			frame, err := decoder.DecodeByte(buf[i])
			if err != nil {
				stats.CountError(err)
				continue
			}
			if frame != nil {
				stats.CountFrame(frame)
				fmt.Print(exbus.FormatFrame(frame))
			}
		}

		if monitorStatsInterval > 0 && time.Now().After(nextStats) {
			fmt.Print(stats.String())
			nextStats = time.Now().Add(time.Duration(monitorStatsInterval) * time.Second)
		}
	}
}
