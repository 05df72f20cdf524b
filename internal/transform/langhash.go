package transform

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"medina/internal/ir"
)

// UnspecifiedLanguageError reports a value that reached the normalizer
// without language tagging. Every value must arrive as a tagged unit; the
// sentinel "none" is an acceptable code, a bare scalar is not.
type UnspecifiedLanguageError struct {
	Field  string
	Value  any
	Source string
}

func (e *UnspecifiedLanguageError) Error() string {
	return fmt.Sprintf("%s: value %v in field %s has no specified language", e.Source, e.Value, e.Field)
}

// NormalizeLanguageHash converts each target field's accumulated sequence of
// tagged units into a language mapping with per-bucket set semantics. Target
// fields absent from the record are left untouched.
func NormalizeLanguageHash(rec ir.Record, sctx *Context) (ir.Record, error) {
	out := rec.Clone()
	for _, field := range sctx.Fields {
		raw, present := out[field]
		if !present {
			continue
		}
		normalized, err := normalizeField(field, raw, sctx)
		if err != nil {
			return nil, err
		}
		out[field] = normalized
	}
	return out, nil
}

func normalizeField(field string, raw any, sctx *Context) (ir.LangMap, error) {
	entries, ok := raw.([]any)
	if !ok {
		// A single accumulated entry may arrive unwrapped.
		entries = []any{raw}
	}

	hash := ir.LangMap{}
	seen := map[string]map[string]struct{}{}

	for _, entry := range dedupeEntries(entries) {
		unit, ok := ir.AsTaggedUnit(entry)
		if !ok {
			err := &UnspecifiedLanguageError{Field: field, Value: entry, Source: sctx.Source}
			sctx.logger().Error("value reached normalizer without a language code",
				zap.String("field", field),
				zap.Any("value", entry),
				zap.String("source", sctx.Source))
			return nil, err
		}
		bucket := unit.Language
		if _, ok := hash[bucket]; !ok {
			hash[bucket] = []string{}
			seen[bucket] = map[string]struct{}{}
		}
		for _, v := range unit.Values {
			text := StripHTML(v)
			if strings.TrimSpace(text) == "" {
				continue
			}
			if _, dup := seen[bucket][text]; dup {
				continue
			}
			seen[bucket][text] = struct{}{}
			hash[bucket] = append(hash[bucket], text)
		}
	}
	return hash, nil
}

// dedupeEntries removes duplicate accumulator entries (whole units, not their
// sub-values), keyed by canonical JSON encoding.
func dedupeEntries(entries []any) []any {
	out := make([]any, 0, len(entries))
	seen := map[string]struct{}{}
	for _, e := range entries {
		key, err := json.Marshal(e)
		if err != nil {
			out = append(out, e)
			continue
		}
		if _, dup := seen[string(key)]; dup {
			continue
		}
		seen[string(key)] = struct{}{}
		out = append(out, e)
	}
	return out
}
