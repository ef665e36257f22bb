// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package telemetry

import (
	"math"

	"github.com/aerotelem/jetibridge/pkg/jetiex"
)

// Simulated sensors stand in for the I2C hardware drivers, which live
// outside this module. They satisfy the same Sensor contract the real
// drivers would, so the rest of the bridge cannot tell the difference.

// SimVario simulates a barometric sensor flying a gentle sine profile.
// It follows the canonical pressure layout: the climb and maximum fields
// are filled in by the producer's variometer, not by Read.
type SimVario struct {
	name   string
	fields []Field
	step   int
}

// NewSimVario creates a simulated vario whose six fields start at baseID.
func NewSimVario(name string, baseID uint8) *SimVario {
	return &SimVario{
		name: name,
		fields: []Field{
			{ID: baseID, DataType: jetiex.DataTypeInt22, Precision: 1, Description: "Pressure", Unit: "hPa"},
			{ID: baseID + 1, DataType: jetiex.DataTypeInt14, Precision: 1, Description: "Temperature", Unit: "C"},
			{ID: baseID + 2, DataType: jetiex.DataTypeInt14, Precision: 1, Description: "Rel. Altitude", Unit: "m"},
			{ID: baseID + 3, DataType: jetiex.DataTypeInt14, Precision: 2, Description: "Climb", Unit: "m/s"},
			{ID: baseID + 4, DataType: jetiex.DataTypeInt14, Precision: 2, Description: "Max Climb", Unit: "m/s"},
			{ID: baseID + 5, DataType: jetiex.DataTypeInt14, Precision: 1, Description: "Max Altitude", Unit: "m"},
		},
	}
}

func (s *SimVario) Name() string       { return s.name }
func (s *SimVario) Category() Category { return CategoryPressure }
func (s *SimVario) Fields() []Field    { return s.fields }

func (s *SimVario) Read() ([]Reading, error) {
	s.step++
	altitude := 25.0 * (1 - math.Cos(float64(s.step)/50.0))
	// barometric formula, scale height for the standard atmosphere
	pressure := 1013.25 * math.Exp(-altitude/8434.0)

	return []Reading{
		{Field: s.fields[0], Value: pressure},
		{Field: s.fields[1], Value: 22.5},
		{Field: s.fields[2], Value: altitude},
	}, nil
}

// SimPower simulates a battery monitor: sagging voltage, varying current
// and accumulating consumed capacity.
type SimPower struct {
	name     string
	fields   []Field
	step     int
	consumed float64 // mAh
}

// NewSimPower creates a simulated battery monitor with fields at baseID.
func NewSimPower(name string, baseID uint8) *SimPower {
	return &SimPower{
		name: name,
		fields: []Field{
			{ID: baseID, DataType: jetiex.DataTypeInt14, Precision: 2, Description: "Voltage", Unit: "V"},
			{ID: baseID + 1, DataType: jetiex.DataTypeInt14, Precision: 1, Description: "Current", Unit: "A"},
			{ID: baseID + 2, DataType: jetiex.DataTypeInt22, Precision: 0, Description: "Capacity", Unit: "mAh"},
		},
	}
}

func (s *SimPower) Name() string       { return s.name }
func (s *SimPower) Category() Category { return CategoryVoltage }
func (s *SimPower) Fields() []Field    { return s.fields }

func (s *SimPower) Read() ([]Reading, error) {
	s.step++
	current := 8.0 + 6.0*math.Sin(float64(s.step)/30.0)
	if current < 0.5 {
		current = 0.5
	}
	s.consumed += current / 36.0 // one sample per nominal 100 ms
	voltage := 12.6 - 0.02*current - s.consumed/1000.0

	return []Reading{
		{Field: s.fields[0], Value: voltage},
		{Field: s.fields[1], Value: current},
		{Field: s.fields[2], Value: s.consumed},
	}, nil
}

// SimRPM simulates an optical rev counter.
type SimRPM struct {
	name   string
	fields []Field
	step   int
}

// NewSimRPM creates a simulated rev counter with one field at baseID.
func NewSimRPM(name string, baseID uint8) *SimRPM {
	return &SimRPM{
		name: name,
		fields: []Field{
			{ID: baseID, DataType: jetiex.DataTypeInt22, Precision: 0, Description: "RPM", Unit: "rpm"},
		},
	}
}

func (s *SimRPM) Name() string       { return s.name }
func (s *SimRPM) Category() Category { return CategoryRPM }
func (s *SimRPM) Fields() []Field    { return s.fields }

func (s *SimRPM) Read() ([]Reading, error) {
	s.step++
	rpm := 6500.0 + 1500.0*math.Sin(float64(s.step)/20.0)
	return []Reading{{Field: s.fields[0], Value: rpm}}, nil
}

// SimGPS simulates a GPS receiver drifting slowly around a fixed point.
type SimGPS struct {
	name   string
	fields []Field
	step   int
}

// NewSimGPS creates a simulated GPS with latitude/longitude at baseID.
func NewSimGPS(name string, baseID uint8) *SimGPS {
	return &SimGPS{
		name: name,
		fields: []Field{
			{ID: baseID, DataType: jetiex.DataTypeCoords, Description: "Latitude", Unit: ""},
			{ID: baseID + 1, DataType: jetiex.DataTypeCoords, Description: "Longitude", Unit: "", Longitude: true},
		},
	}
}

func (s *SimGPS) Name() string       { return s.name }
func (s *SimGPS) Category() Category { return CategoryGPS }
func (s *SimGPS) Fields() []Field    { return s.fields }

func (s *SimGPS) Read() ([]Reading, error) {
	s.step++
	drift := 0.001 * math.Sin(float64(s.step)/100.0)
	return []Reading{
		{Field: s.fields[0], Value: 47.2692 + drift},
		{Field: s.fields[1], Value: 11.4041 + drift},
	}, nil
}
