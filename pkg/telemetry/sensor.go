// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

// Package telemetry turns sensor readings into EX-Bus reply frames and
// answers receiver polls with them.
//
// Two goroutines cooperate: a producer cycles through the registered
// sensors, reads them and prebuilds reply frames, and the bus consumer
// serves those frames whenever a telemetry request arrives. The handoff
// between the two is a single mutex-protected last-value-wins buffer, so
// the reply path does no encoding work inside the ~4 ms answer slot beyond
// patching the packet ID and recomputing the frame CRC.
package telemetry

import "github.com/aerotelem/jetibridge/pkg/jetiex"

// Category groups sensors by the physical quantity they measure.
type Category int

// Sensor categories
const (
	CategoryPressure Category = iota
	CategoryVoltage
	CategoryCurrent
	CategoryCapacity
	CategoryRPM
	CategoryGPS
)

// String returns the human-readable category name.
func (c Category) String() string {
	switch c {
	case CategoryPressure:
		return "PRESSURE"
	case CategoryVoltage:
		return "VOLTAGE"
	case CategoryCurrent:
		return "CURRENT"
	case CategoryCapacity:
		return "CAPACITY"
	case CategoryRPM:
		return "RPM"
	case CategoryGPS:
		return "GPS"
	default:
		return "UNKNOWN"
	}
}

// Field describes one telemetry value a sensor produces. The transmitter
// learns the description and unit from the announcement-phase text frames
// and later matches data values to them by ID.
type Field struct {
	ID          uint8 // 1-15, unique across the whole device
	DataType    jetiex.DataType
	Precision   uint8
	Description string // max 31 bytes
	Unit        string // max 7 bytes
	Longitude   bool   // coordinate axis, GPS fields only
}

// Reading is one measured value for a field.
type Reading struct {
	Field Field
	Value float64
}

// Sensor is the capability a telemetry source must provide. Implementations
// are owned exclusively by the producer goroutine; Read may block on device
// I/O. A failed Read costs one producer cycle, nothing more.
type Sensor interface {
	Name() string
	Category() Category
	Fields() []Field
	Read() ([]Reading, error)
}
