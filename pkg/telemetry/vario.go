// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package telemetry

import "time"

// alphaBetaFilter smooths the raw climb rate. Altitude jitter of a few
// centimeters turns into wild climb spikes after differentiation, so the
// raw gradient is unusable without filtering.
type alphaBetaFilter struct {
	alpha    float64
	beta     float64
	estimate float64
	velocity float64
}

func (f *alphaBetaFilter) update(measurement float64) float64 {
	f.estimate += f.velocity
	residual := measurement - f.estimate
	f.estimate += f.alpha * residual
	f.velocity += f.beta * residual
	return f.estimate
}

// Variometer derives a filtered climb rate from relative altitude samples.
// It works in integer centimeters internally to stay exact across small
// deltas, mirroring what the flight hardware does.
type Variometer struct {
	filter       alphaBetaFilter
	lastAlt      int64 // cm
	lastTime     time.Time
	primed       bool
	MaxAltitude  float64 // m
	MaxClimbRate float64 // m/s

	now func() time.Time // test hook
}

// NewVariometer creates a variometer with the default filter gains.
func NewVariometer() *Variometer {
	return &Variometer{
		filter: alphaBetaFilter{alpha: 0.0935, beta: 0.001},
		now:    time.Now,
	}
}

// Update feeds one altitude sample in meters and returns the smoothed climb
// rate in m/s. The first sample only primes the filter and returns zero.
func (v *Variometer) Update(altitude float64) float64 {
	altCm := int64(altitude * 100)
	now := v.now()

	if !v.primed {
		v.primed = true
		v.lastAlt = altCm
		v.lastTime = now
		return 0
	}

	dtMs := now.Sub(v.lastTime).Milliseconds()
	var rawCms int64
	if dtMs > 0 {
		rawCms = (altCm - v.lastAlt) * 1000 / dtMs
	}
	v.lastAlt = altCm
	v.lastTime = now

	climb := v.filter.update(float64(rawCms)) / 100.0

	if altitude > v.MaxAltitude {
		v.MaxAltitude = altitude
	}
	if climb > v.MaxClimbRate {
		v.MaxClimbRate = climb
	}
	return climb
}
