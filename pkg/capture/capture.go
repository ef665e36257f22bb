// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Aerotelem

// Package capture implements the frame-capture file format: a stream of
// CBOR-encoded records, one per decoded frame or noise burst, used to
// record a live bus for offline analysis and replay.
package capture

import (
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Record is one capture entry. Raw holds the exact bytes as they appeared
// on the wire, so a capture can be replayed through the decoder unchanged.
type Record struct {
	Timestamp time.Time `cbor:"1,keyasint"`
	Raw       []byte    `cbor:"2,keyasint"`
	Kind      string    `cbor:"3,keyasint,omitempty"` // frame kind, or "" for undecodable bytes
}

// encMode keeps full timestamp precision; the default unix-seconds time
// encoding would collapse the inter-frame timing replay depends on.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
}

// Writer appends records to a capture stream.
type Writer struct {
	enc *cbor.Encoder
}

// NewWriter creates a capture writer on top of w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: encMode.NewEncoder(w)}
}

// Write appends one record.
func (w *Writer) Write(rec Record) error {
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("encode capture record: %w", err)
	}
	return nil
}

// Reader iterates the records of a capture stream.
type Reader struct {
	dec *cbor.Decoder
}

// NewReader creates a capture reader on top of r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: cbor.NewDecoder(r)}
}

// Read returns the next record, or io.EOF at the end of the stream.
func (r *Reader) Read() (Record, error) {
	var rec Record
	if err := r.dec.Decode(&rec); err != nil {
		if err == io.EOF {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("decode capture record: %w", err)
	}
	return rec, nil
}
