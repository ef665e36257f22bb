// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aerotelem/jetibridge/pkg/exbus"
	"github.com/aerotelem/jetibridge/pkg/jetiex"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <hex-frame>...",
	Short: "Decode hex-encoded EX-Bus frames",
	Long: `Decode one or more EX-Bus frames given as hex strings.

Spaces and colons in the hex string are ignored, so frames can be pasted
straight from a logic analyzer or a capture log:

  jetibridge decode "3D 01 08 06 3A 00 98 81"

Telemetry replies have their embedded EX packet decoded as well.

Exit codes:
  0 - all frames decoded and CRC-valid
  1 - at least one frame malformed or CRC-invalid`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	failed := false
	for _, arg := range args {
		cleaned := strings.NewReplacer(" ", "", ":", "", "\n", "").Replace(arg)
		raw, err := hex.DecodeString(cleaned)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid hex %q: %v\n", arg, err)
			failed = true
			continue
		}

		frame, err := exbus.ParseFrame(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "frame %q: %v\n", arg, err)
			failed = true
			continue
		}

		fmt.Print(exbus.FormatFrame(frame))
		if frame.Kind() == exbus.KindTelemetryReply && !printEXPacket(frame.Payload()) {
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
	return nil
}

// printEXPacket dumps an embedded EX packet and reports whether it was
// structurally sound and CRC-valid.
func printEXPacket(payload []byte) bool {
	packet, err := jetiex.Decode(payload)
	if err != nil {
		fmt.Printf("  EX packet: %v\n", err)
		return false
	}

	fmt.Printf("  EX %s product=0x%04X device=0x%04X crc_valid=%t\n",
		packet.Type(), packet.ProductID(), packet.DeviceID(), packet.CRCValid())

	if packet.Type() != jetiex.TypeData {
		return packet.CRCValid()
	}
	values, err := jetiex.ParseDataBody(packet.Body())
	if err != nil {
		fmt.Printf("    %v\n", err)
		return false
	}
	for _, v := range values {
		switch v.DataType {
		case jetiex.DataTypeCoords:
			deg, lon, err := jetiex.DecodeCoordinate(v.Raw)
			if err == nil {
				axis := "lat"
				if lon {
					axis = "lon"
				}
				fmt.Printf("    Field %2d: %.5f deg (%s)\n", v.FieldID, deg, axis)
			}
		case jetiex.DataTypeDate:
			fmt.Printf("    Field %2d: date/time % X\n", v.FieldID, v.Raw)
		default:
			value, precision, err := jetiex.DecodeValue(v.Raw, v.DataType)
			if err == nil {
				fmt.Printf("    Field %2d: %.*f\n", v.FieldID, int(precision), value)
			}
		}
	}
	return packet.CRCValid()
}
