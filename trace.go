package ledsnake

import (
	"io"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
)

// TickRecord is a single row of the tick trace.
type TickRecord struct {
	Tick      uint64 `csv:"tick"`
	PressedA  bool   `csv:"pressed_a"`
	PressedB  bool   `csv:"pressed_b"`
	Direction string `csv:"direction"`
	HeadX     int8   `csv:"head_x"`
	HeadY     int8   `csv:"head_y"`
	Length    int    `csv:"length"`
	Turns     uint32 `csv:"turns"`
	LitCells  int    `csv:"lit_cells"`
}

// TraceWriter writes tick records as CSV. The header is written with the
// first record.
type TraceWriter struct {
	w             io.Writer
	headerWritten bool
}

// NewTraceWriter creates a new trace writer writing to w.
func NewTraceWriter(w io.Writer) *TraceWriter {
	return &TraceWriter{w: w}
}

// Write writes a single record.
func (t *TraceWriter) Write(rec TickRecord) error {
	records := []TickRecord{rec}

	if !t.headerWritten {
		if err := gocsv.Marshal(records, t.w); err != nil {
			return errors.Wrap(err, "failed to write trace header")
		}
		t.headerWritten = true
		return nil
	}

	if err := gocsv.MarshalWithoutHeaders(records, t.w); err != nil {
		return errors.Wrap(err, "failed to write trace")
	}
	return nil
}
