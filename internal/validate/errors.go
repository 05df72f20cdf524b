package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"medina/internal/ir"
)

// ErrorSet aggregates validation messages keyed by field path. All violations
// found in one record are collected before the record is rejected; nothing
// short-circuits.
type ErrorSet map[string][]string

// Add appends a message under the given field path.
func (s ErrorSet) Add(path, format string, args ...any) {
	s[path] = append(s[path], fmt.Sprintf(format, args...))
}

// Empty reports whether no violations were recorded.
func (s ErrorSet) Empty() bool { return len(s) == 0 }

// Paths returns the field paths with messages, sorted for stable output.
func (s ErrorSet) Paths() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// String renders every message as "path: message" lines.
func (s ErrorSet) String() string {
	var b strings.Builder
	for _, p := range s.Paths() {
		for _, msg := range s[p] {
			fmt.Fprintf(&b, "%s: %s\n", p, msg)
		}
	}
	return b.String()
}

// ValidationError is the fatal result of validating one record: the full
// error set plus a dump of the offending record so operators can see exactly
// which rule failed and what data triggered it.
type ValidationError struct {
	Errors ErrorSet
	Record ir.Record
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("record %q failed validation:\n%s\nrecord:\n%s",
		e.Record.ID(), e.Errors.String(), spew.Sdump(map[string]any(e.Record)))
}
