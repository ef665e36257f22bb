// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem
//
// JetiBridge - JETI EX-Bus Telemetry Bridge
//
// A CLI tool that acts as a telemetry slave on the JETI EX-Bus, answering
// receiver polls with EX-encoded sensor data, plus monitoring, capture and
// replay tools for bus debugging.

package main

import (
	"os"

	"github.com/aerotelem/jetibridge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
