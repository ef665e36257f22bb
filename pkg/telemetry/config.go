// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package telemetry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes the bridge: the device identity announced on the bus
// and the table of sensors to expose.
type Config struct {
	Device  DeviceConfig   `yaml:"device"`
	Bus     BusConfig      `yaml:"bus"`
	Sensors []SensorConfig `yaml:"sensors"`
}

// DeviceConfig is the identity that goes into every EX packet header.
type DeviceConfig struct {
	Name      string `yaml:"name"`
	ProductID uint16 `yaml:"product_id"`
	DeviceID  uint16 `yaml:"device_id"`
}

// BusConfig holds bus-side tunables.
type BusConfig struct {
	AnnounceFrames int `yaml:"announce_frames"`
}

// SensorConfig is one entry of the known-sensor table.
type SensorConfig struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	BaseID   uint8  `yaml:"base_id"`
}

// DefaultConfig returns the configuration used when no file is given:
// a vario, a battery monitor, a rev counter and a GPS.
func DefaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{Name: "JetiBridge", ProductID: 0xA8A1, DeviceID: 0x555D},
		Bus:    BusConfig{AnnounceFrames: DefaultAnnounceFrames},
		Sensors: []SensorConfig{
			{Name: "vario", Category: "PRESSURE", BaseID: 1},
			{Name: "battery", Category: "VOLTAGE", BaseID: 7},
			{Name: "prop", Category: "RPM", BaseID: 10},
			{Name: "gps", Category: "GPS", BaseID: 11},
		},
	}
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Device.Name == "" {
		return nil, fmt.Errorf("config: device name is required")
	}
	if cfg.Bus.AnnounceFrames <= 0 {
		cfg.Bus.AnnounceFrames = DefaultAnnounceFrames
	}
	return cfg, nil
}

// BuildRegistry constructs a registry with a simulated sensor per config
// entry. Hardware drivers plug in the same way once they exist; they just
// have to satisfy the Sensor interface.
func (c *Config) BuildRegistry() (*Registry, error) {
	registry := NewRegistry(c.Device.Name, c.Device.ProductID, c.Device.DeviceID)

	for _, sc := range c.Sensors {
		var sensor Sensor
		switch sc.Category {
		case "PRESSURE":
			sensor = NewSimVario(sc.Name, sc.BaseID)
		case "VOLTAGE":
			sensor = NewSimPower(sc.Name, sc.BaseID)
		case "RPM":
			sensor = NewSimRPM(sc.Name, sc.BaseID)
		case "GPS":
			sensor = NewSimGPS(sc.Name, sc.BaseID)
		default:
			return nil, fmt.Errorf("sensor %s: unknown category %q", sc.Name, sc.Category)
		}
		if err := registry.Add(sensor); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
