package transform

import "medina/internal/ir"

// AdjustCardinality reconciles extraction shape with schema shape for the
// web-resource fields: any wr_id whose value is a one-element sequence is
// unwrapped to the bare scalar, at any nesting depth (single object or each
// element of agg_has_view). Multi-element and already-scalar wr_ids, and all
// other fields, are left as they are. The input record is not mutated.
func AdjustCardinality(rec ir.Record, _ *Context) (ir.Record, error) {
	out := rec.Clone()
	for _, field := range ir.WebResourceFields {
		v, present := out[field]
		if !present {
			continue
		}
		out[field] = unwrapWRIDs(v)
	}
	return out, nil
}

func unwrapWRIDs(v any) any {
	switch t := v.(type) {
	case []any:
		for i, e := range t {
			t[i] = unwrapWRIDs(e)
		}
		return t
	case map[string]any:
		if raw, ok := t[ir.WRID]; ok {
			if seq, ok := raw.([]any); ok && len(seq) == 1 {
				t[ir.WRID] = seq[0]
			} else if seq, ok := raw.([]string); ok && len(seq) == 1 {
				t[ir.WRID] = seq[0]
			}
		}
		return t
	default:
		return v
	}
}
