package ir

// Record is one record's output mapping: field name to accumulated value.
// Before normalization a multilingual field holds a []any of tagged units
// (or, erroneously, bare scalars); afterwards it holds a LangMap. Web-resource
// fields hold a map[string]any or a []any of them. A handful of fields
// (id, __source, agg_data_provider_collection_id) stay plain strings.
type Record map[string]any

// LangMap is the normalized shape of a multilingual field: language code to
// ordered, deduplicated values. The code "none" marks indeterminate language.
type LangMap map[string][]string

// LanguageNone is the sentinel code for values with no determinable language.
const LanguageNone = "none"

// SourceField carries the institution config identifier the record came from.
const SourceField = "__source"

// ID returns the record's id, or "" when absent or not a string.
func (r Record) ID() string {
	s, _ := r["id"].(string)
	return s
}

// Source returns the record's originating config identifier, or "".
func (r Record) Source() string {
	s, _ := r[SourceField].(string)
	return s
}

// Clone returns a copy of the record deep enough for stage-local mutation:
// the top-level map, nested []any slices and map[string]any values are copied,
// scalars and LangMap values are shared.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		cp := make([]any, len(t))
		for i, e := range t {
			cp[i] = cloneValue(e)
		}
		return cp
	case map[string]any:
		cp := make(map[string]any, len(t))
		for k, e := range t {
			cp[k] = cloneValue(e)
		}
		return cp
	default:
		return v
	}
}

// TaggedUnit is one language-tagged extraction result, produced upstream by
// the per-institution macros.
type TaggedUnit struct {
	Language string
	Values   []string
}

// AsTaggedUnit interprets v as a tagged unit. It accepts both the typed form
// and the map[string]any shape that json.Unmarshal produces.
func AsTaggedUnit(v any) (TaggedUnit, bool) {
	switch t := v.(type) {
	case TaggedUnit:
		return t, t.Language != ""
	case map[string]any:
		lang, ok := t["language"].(string)
		if !ok || lang == "" {
			return TaggedUnit{}, false
		}
		raw, present := t["values"]
		if !present {
			return TaggedUnit{}, false
		}
		return TaggedUnit{Language: lang, Values: asStrings(raw)}, true
	default:
		return TaggedUnit{}, false
	}
}

// AsLangMap interprets v as a normalized language mapping. It accepts the
// typed LangMap and the map shapes produced by json.Unmarshal.
func AsLangMap(v any) (LangMap, bool) {
	switch t := v.(type) {
	case LangMap:
		return t, true
	case map[string][]string:
		return LangMap(t), true
	case map[string]any:
		out := make(LangMap, len(t))
		for k, raw := range t {
			out[k] = asStrings(raw)
		}
		return out, true
	default:
		return nil, false
	}
}

func asStrings(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{t}
	case nil:
		return nil
	default:
		return nil
	}
}
