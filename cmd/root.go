// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool
)

var rootCmd = &cobra.Command{
	Use:   "jetibridge",
	Short: "JETI EX-Bus telemetry bridge",
	Long: `JetiBridge - an EX-Bus telemetry bridge and protocol analyzer.

Acts as a telemetry slave on the JETI EX-Bus: it answers receiver polls
with sensor data encoded in the EX format, tracks channel data, and offers
monitoring, capture and replay tools for debugging a live bus.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 125000]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the EXBUS_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell
history.`,
	Version: "1.0.0",
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 125000, "Baud rate (serial only, 125000 or 250000)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
