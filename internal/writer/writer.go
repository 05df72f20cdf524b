// Package writer serializes validated records as newline-delimited JSON.
package writer

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"

	"golang.org/x/text/unicode/norm"

	"medina/internal/ir"
	"medina/internal/validate"
)

// Writer validates and emits records, one JSON line each. Output is
// Unicode-normalized (NFC). A record with a non-empty error set is never
// emitted, not even partially; Write returns the full *validate.ValidationError
// instead.
type Writer struct {
	mu        sync.Mutex
	out       *bufio.Writer
	validator *validate.Validator
}

// New wraps w with a validating NDJSON writer.
func New(w io.Writer, v *validate.Validator) *Writer {
	return &Writer{out: bufio.NewWriter(w), validator: v}
}

// Write validates rec and appends it as one JSON line.
func (w *Writer) Write(rec ir.Record) error {
	if errs := w.validator.Validate(rec); !errs.Empty() {
		return &validate.ValidationError{Errors: errs, Record: rec}
	}
	line, err := json.Marshal(map[string]any(rec))
	if err != nil {
		return err
	}
	line = norm.NFC.Bytes(line)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.out.Write(line); err != nil {
		return err
	}
	return w.out.WriteByte('\n')
}

// Flush drains buffered lines to the underlying writer.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.out.Flush()
}
