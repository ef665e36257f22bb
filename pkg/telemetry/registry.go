// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package telemetry

import (
	"fmt"

	"github.com/aerotelem/jetibridge/pkg/jetiex"
)

// Label is one entry of the announcement sequence: the text frame the
// transmitter needs before it can display a value.
type Label struct {
	FieldID     uint8
	Description string
	Unit        string
}

// Registry holds the ordered set of sensors a device exposes, plus the
// device identity that goes into every EX packet header.
type Registry struct {
	DeviceName string
	ProductID  uint16
	DeviceID   uint16

	sensors []Sensor
}

// NewRegistry creates a registry for the given device identity.
func NewRegistry(name string, productID, deviceID uint16) *Registry {
	return &Registry{DeviceName: name, ProductID: productID, DeviceID: deviceID}
}

// Add registers a sensor after validating its field metadata against the
// sensors already present. Field IDs must be unique device-wide because the
// transmitter matches values to labels by ID alone.
func (r *Registry) Add(s Sensor) error {
	seen := map[uint8]string{}
	for _, existing := range r.sensors {
		for _, f := range existing.Fields() {
			seen[f.ID] = existing.Name()
		}
	}

	for _, f := range s.Fields() {
		if f.ID < 1 || f.ID > 15 {
			return fmt.Errorf("sensor %s: field ID %d out of range (1-15)", s.Name(), f.ID)
		}
		if owner, dup := seen[f.ID]; dup {
			return fmt.Errorf("sensor %s: field ID %d already used by %s", s.Name(), f.ID, owner)
		}
		if len(f.Description) > jetiex.MaxDescriptionLength {
			return fmt.Errorf("sensor %s: description %q too long", s.Name(), f.Description)
		}
		if len(f.Unit) > jetiex.MaxUnitLength {
			return fmt.Errorf("sensor %s: unit %q too long", s.Name(), f.Unit)
		}
		seen[f.ID] = s.Name()
	}

	r.sensors = append(r.sensors, s)
	return nil
}

// Sensors returns the registered sensors in registration order.
func (r *Registry) Sensors() []Sensor {
	return r.sensors
}

// Labels returns the announcement sequence: the device name under field ID 0
// first, then every sensor field in registration order.
func (r *Registry) Labels() []Label {
	labels := []Label{{FieldID: 0, Description: r.DeviceName}}
	for _, s := range r.sensors {
		for _, f := range s.Fields() {
			labels = append(labels, Label{FieldID: f.ID, Description: f.Description, Unit: f.Unit})
		}
	}
	return labels
}

// Builder returns an EX packet builder carrying the device identity.
func (r *Registry) Builder() *jetiex.Builder {
	return &jetiex.Builder{ProductID: r.ProductID, DeviceID: r.DeviceID}
}
