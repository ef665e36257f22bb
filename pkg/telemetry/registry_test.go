// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerotelem/jetibridge/pkg/jetiex"
)

// stubSensor is a minimal sensor for registry tests.
type stubSensor struct {
	name   string
	fields []Field
}

func (s *stubSensor) Name() string       { return s.name }
func (s *stubSensor) Category() Category { return CategoryRPM }
func (s *stubSensor) Fields() []Field    { return s.fields }
func (s *stubSensor) Read() ([]Reading, error) {
	readings := make([]Reading, len(s.fields))
	for i, f := range s.fields {
		readings[i] = Reading{Field: f, Value: 1}
	}
	return readings, nil
}

func TestRegistry_Add(t *testing.T) {
	r := NewRegistry("Test", 0xA8A1, 0x555D)

	err := r.Add(&stubSensor{name: "a", fields: []Field{
		{ID: 1, DataType: jetiex.DataTypeInt14, Description: "One", Unit: "x"},
		{ID: 2, DataType: jetiex.DataTypeInt14, Description: "Two", Unit: "y"},
	}})
	require.NoError(t, err)
	assert.Len(t, r.Sensors(), 1)
}

func TestRegistry_Add_Validation(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
	}{
		{"field ID zero", []Field{{ID: 0, Description: "x"}}},
		{"field ID too high", []Field{{ID: 16, Description: "x"}}},
		{"duplicate within sensor", []Field{{ID: 1, Description: "x"}, {ID: 1, Description: "y"}}},
		{"description too long", []Field{{ID: 1, Description: "a description well over the thirty-one byte cap"}}},
		{"unit too long", []Field{{ID: 1, Description: "x", Unit: "toolong!"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry("Test", 0xA8A1, 0x555D)
			assert.Error(t, r.Add(&stubSensor{name: "bad", fields: tt.fields}))
		})
	}
}

func TestRegistry_Add_CrossSensorDuplicate(t *testing.T) {
	r := NewRegistry("Test", 0xA8A1, 0x555D)
	require.NoError(t, r.Add(&stubSensor{name: "a", fields: []Field{{ID: 3, Description: "x"}}}))

	err := r.Add(&stubSensor{name: "b", fields: []Field{{ID: 3, Description: "y"}}})
	assert.ErrorContains(t, err, "already used by a")
}

func TestRegistry_Labels(t *testing.T) {
	r := NewRegistry("MyDevice", 0xA8A1, 0x555D)
	require.NoError(t, r.Add(&stubSensor{name: "a", fields: []Field{
		{ID: 1, Description: "Voltage", Unit: "V"},
		{ID: 2, Description: "Current", Unit: "A"},
	}}))

	labels := r.Labels()
	require.Len(t, labels, 3)
	assert.Equal(t, Label{FieldID: 0, Description: "MyDevice"}, labels[0], "device name must come first under field ID 0")
	assert.Equal(t, "Voltage", labels[1].Description)
	assert.Equal(t, "Current", labels[2].Description)
}

// ============================================================
// SharedBuffer
// ============================================================

func TestSharedBuffer_DataServedOnce(t *testing.T) {
	b := &SharedBuffer{}
	assert.Nil(t, b.TakeData(), "empty buffer must return nil")

	b.PublishData([]byte{1, 2, 3})
	assert.Equal(t, []byte{1, 2, 3}, b.TakeData())
	assert.Nil(t, b.TakeData(), "second take must find nothing")
}

func TestSharedBuffer_LastValueWins(t *testing.T) {
	b := &SharedBuffer{}
	b.PublishData([]byte{1})
	b.PublishData([]byte{2})
	assert.Equal(t, []byte{2}, b.TakeData(), "unconsumed frame must be replaced")
}

func TestSharedBuffer_LabelCycling(t *testing.T) {
	b := &SharedBuffer{}
	assert.Nil(t, b.Label(0), "labels must be nil before publish")

	b.PublishLabels([][]byte{{10}, {11}, {12}})
	assert.Equal(t, 3, b.LabelCount())

	for i, want := range []byte{10, 11, 12, 10, 11} {
		assert.Equal(t, []byte{want}, b.Label(i), "index %d", i)
	}
}
