// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

package telemetry

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/aerotelem/jetibridge/pkg/exbus"
)

// Bridge is the bus consumer: it feeds incoming bytes through the receive
// state machine, tracks channel data, and answers telemetry and JetiBox
// polls via the responder.
type Bridge struct {
	conn      io.ReadWriter
	decoder   *exbus.Decoder
	responder *Responder
	stats     *exbus.Statistics
	logger    *log.Logger

	// OnFrame, when set, observes every successfully decoded frame.
	// It runs on the consumer goroutine and must not block.
	OnFrame func(*exbus.Frame)

	mu       sync.Mutex
	channels []exbus.ChannelValue
}

// NewBridge creates a bridge over the given transport.
func NewBridge(conn io.ReadWriter, responder *Responder, stats *exbus.Statistics, logger *log.Logger) *Bridge {
	return &Bridge{
		conn:      conn,
		decoder:   exbus.NewDecoder(),
		responder: responder,
		stats:     stats,
		logger:    logger.WithPrefix("exbus"),
	}
}

// Channels returns the most recently received channel values.
func (b *Bridge) Channels() []exbus.ChannelValue {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.channels
}

// Run consumes the byte stream until the context is cancelled or the
// transport fails. Closing the transport is the way to unblock a pending
// Read during shutdown.
func (b *Bridge) Run(ctx context.Context) error {
	b.logger.Info("starting EX-Bus main loop")

	buf := make([]byte, 128)
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("stopping")
			return ctx.Err()
		default:
		}

		n, err := b.conn.Read(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		for i := 0; i < n; i++ {
			frame, err := b.decoder.DecodeByte(buf[i])
			if err != nil {
				// malformed frames are dropped; the master re-polls
				b.stats.CountError(err)
				b.logger.Debug("frame dropped", "err", err)
				continue
			}
			if frame == nil {
				continue
			}
			b.dispatch(frame)
		}
	}
}

func (b *Bridge) dispatch(frame *exbus.Frame) {
	b.stats.CountFrame(frame)
	if b.OnFrame != nil {
		b.OnFrame(frame)
	}

	switch frame.Kind() {
	case exbus.KindChannelData:
		channels, err := exbus.ParseChannels(frame)
		if err != nil {
			b.logger.Debug("bad channel frame", "err", err)
			return
		}
		b.mu.Lock()
		b.channels = channels
		b.mu.Unlock()

	case exbus.KindTelemetryRequest:
		if !frame.AllowsReply() {
			return
		}
		if err := b.responder.RespondTelemetry(b.conn, frame); err != nil {
			b.logger.Error("telemetry reply failed", "err", err)
		}

	case exbus.KindJetiBoxRequest:
		if !frame.AllowsReply() {
			return
		}
		if err := b.responder.RespondJetiBox(b.conn, frame); err != nil {
			b.logger.Error("jetibox reply failed", "err", err)
		}
	}
}
