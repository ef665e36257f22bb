// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package telemetry

import "sync"

// SharedBuffer is the producer/consumer handoff: the most recently built
// reply frames, not a queue. The producer overwrites the data frame whenever
// it finishes a cycle (last-value-wins); the consumer takes it at most once
// per publish. Label frames are built once and then only read.
//
// All frames stored here are finalized with a placeholder packet ID; the
// consumer patches the real ID at send time.
type SharedBuffer struct {
	mu          sync.Mutex
	labelFrames [][]byte
	labelsReady bool
	dataFrame   []byte
	dataReady   bool
}

// PublishLabels stores the announcement frames and marks them ready.
func (b *SharedBuffer) PublishLabels(frames [][]byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.labelFrames = frames
	b.labelsReady = len(frames) > 0
}

// Label returns announcement frame index modulo the label count, or nil if
// the labels have not been published yet.
func (b *SharedBuffer) Label(index int) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.labelsReady {
		return nil
	}
	return b.labelFrames[index%len(b.labelFrames)]
}

// LabelCount returns the number of published announcement frames.
func (b *SharedBuffer) LabelCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.labelFrames)
}

// PublishData stores a fresh data frame, replacing any unconsumed one.
func (b *SharedBuffer) PublishData(frame []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dataFrame = frame
	b.dataReady = true
}

// TakeData returns the current data frame and clears the ready flag, or
// nil if no frame has been published since the last take.
func (b *SharedBuffer) TakeData() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.dataReady {
		return nil
	}
	b.dataReady = false
	return b.dataFrame
}
