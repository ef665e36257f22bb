// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/aerotelem/jetibridge/pkg/exbus"
	"github.com/aerotelem/jetibridge/pkg/jetiex"
)

// Producer reads sensors round-robin and prebuilds reply frames into the
// shared buffer. It owns the sensors exclusively; nothing on the bus side
// ever touches them.
type Producer struct {
	registry *Registry
	buffer   *SharedBuffer
	logger   *log.Logger

	// Interval paces the sensor loop. Zero means back-to-back cycles,
	// which is what the flight hardware does.
	Interval time.Duration

	varios map[string]*Variometer
	index  int
}

// NewProducer creates a producer over the given registry and handoff buffer.
func NewProducer(registry *Registry, buffer *SharedBuffer, logger *log.Logger) *Producer {
	return &Producer{
		registry: registry,
		buffer:   buffer,
		logger:   logger.WithPrefix("producer"),
		varios:   map[string]*Variometer{},
	}
}

// BuildLabels prebuilds the announcement text frames and publishes them.
// Called once before the loop starts; the transmitter stores the labels and
// matches later data values to them by field ID.
func (p *Producer) BuildLabels() error {
	builder := p.registry.Builder()

	labels := p.registry.Labels()
	frames := make([][]byte, 0, len(labels))
	for _, label := range labels {
		packet, err := builder.Text(label.FieldID, label.Description, label.Unit)
		if err != nil {
			return fmt.Errorf("label %q: %w", label.Description, err)
		}
		frame, err := exbus.WrapTelemetry(packet)
		if err != nil {
			return fmt.Errorf("label %q: %w", label.Description, err)
		}
		frames = append(frames, exbus.Finalize(frame))
	}

	p.buffer.PublishLabels(frames)
	p.logger.Info("announcement frames ready", "labels", len(frames))
	return nil
}

// Run cycles through the sensors until the context is cancelled. Each
// iteration reads one sensor, derives secondary values, builds the EX data
// packet and its EX-Bus frame, and publishes the result.
func (p *Producer) Run(ctx context.Context) error {
	sensors := p.registry.Sensors()
	if len(sensors) == 0 {
		return fmt.Errorf("no sensors registered")
	}

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("stopping")
			return ctx.Err()
		default:
		}

		sensor := sensors[p.index]
		p.index = (p.index + 1) % len(sensors)

		if err := p.cycle(sensor); err != nil {
			// no data this cycle; the bus will simply re-poll
			p.logger.Warn("sensor cycle failed", "sensor", sensor.Name(), "err", err)
		}

		if p.Interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.Interval):
			}
		}
	}
}

func (p *Producer) cycle(sensor Sensor) error {
	readings, err := sensor.Read()
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if len(readings) == 0 {
		return nil
	}
	readings = p.derive(sensor, readings)

	values := make([]jetiex.Value, len(readings))
	for i, r := range readings {
		values[i] = jetiex.Value{
			FieldID:   r.Field.ID,
			DataType:  r.Field.DataType,
			Precision: r.Field.Precision,
			Value:     r.Value,
			Longitude: r.Field.Longitude,
		}
	}

	packet, err := p.registry.Builder().Data(values)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	frame, err := exbus.WrapTelemetry(packet)
	if err != nil {
		return fmt.Errorf("wrap: %w", err)
	}

	p.buffer.PublishData(exbus.Finalize(frame))
	return nil
}

// derive appends computed values to a sensor's raw readings. Pressure
// sensors follow the canonical six-field layout (pressure, temperature,
// altitude, climb, max climb, max altitude); the sensor reports the first
// three and the variometer fills in the rest.
func (p *Producer) derive(sensor Sensor, readings []Reading) []Reading {
	if sensor.Category() != CategoryPressure {
		return readings
	}
	fields := sensor.Fields()
	if len(fields) < 6 || len(readings) < 3 {
		return readings
	}

	vario := p.varios[sensor.Name()]
	if vario == nil {
		vario = NewVariometer()
		p.varios[sensor.Name()] = vario
	}

	climb := vario.Update(readings[2].Value)
	return append(readings,
		Reading{Field: fields[3], Value: climb},
		Reading{Field: fields[4], Value: vario.MaxClimbRate},
		Reading{Field: fields[5], Value: vario.MaxAltitude},
	)
}
