package writer

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"medina/internal/ir"
	"medina/internal/langtag"
	"medina/internal/transform"
	"medina/internal/validate"
)

func unit(lang string, values ...string) map[string]any {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return map[string]any{"language": lang, "values": vs}
}

func accumulated(en, ar string) []any {
	return []any{unit("en", en), unit("ar-Arab", ar)}
}

// Exercises the whole per-record path: accumulated input through
// normalization, faceting, cardinality adjustment, validation and
// serialization to one JSON line.
func TestEndToEndRecord(t *testing.T) {
	rec := ir.Record{
		"id":                              "aub-1",
		ir.SourceField:                    "aub_config",
		"cho_title":                       []any{unit("en", "Title")},
		"agg_data_provider":               accumulated("Lib", "مكتبة"),
		"agg_data_provider_collection":    accumulated("Posters", "ملصقات"),
		"agg_data_provider_collection_id": "aub-posters",
		"agg_data_provider_country":       accumulated("Lebanon", "لبنان"),
		"agg_provider":                    accumulated("Aggregator", "مجمع"),
		"agg_provider_country":            accumulated("United States", "الولايات المتحدة"),
		"cho_edm_type":                    []any{unit("en", "Text")},
		"agg_is_shown_at":                 map[string]any{"wr_id": []any{"http://example.org/x"}},
	}

	stages, err := transform.Resolve(transform.Registry(), transform.DefaultOrder)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	sctx := &transform.Context{
		Source:  "aub_config",
		Fields:  ir.NormalizedFields(),
		Profile: langtag.DefaultProfile(),
	}
	out, err := transform.Apply(rec, stages, sctx)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	var buf bytes.Buffer
	w := New(&buf, validate.New(nil))
	if err := w.Write(out); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	line := buf.String()
	if !strings.HasSuffix(line, "\n") || strings.Count(line, "\n") != 1 {
		t.Fatalf("want exactly one terminated line, got %q", line)
	}

	var emitted map[string]any
	if err := json.Unmarshal([]byte(line), &emitted); err != nil {
		t.Fatalf("emitted line is not JSON: %v", err)
	}
	title := emitted["cho_title"].(map[string]any)
	if got := title["en"].([]any)[0]; got != "Title" {
		t.Fatalf("cho_title = %v", emitted["cho_title"])
	}
	provider := emitted["agg_provider"].(map[string]any)
	if got := provider["ar-Arab"].([]any)[0]; got != "مجمع" {
		t.Fatalf("agg_provider = %v", emitted["agg_provider"])
	}
	shown := emitted["agg_is_shown_at"].(map[string]any)
	if shown["wr_id"] != "http://example.org/x" {
		t.Fatalf("agg_is_shown_at = %v", shown)
	}
	facet := emitted["cho_type_facet"].(map[string]any)
	if got := facet["en"].([]any)[0]; got != "Text" {
		t.Fatalf("cho_type_facet = %v", facet)
	}
}

func TestInvalidRecordNotEmitted(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, validate.New(nil))
	err := w.Write(ir.Record{"id": "x"})
	var valErr *validate.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if !strings.Contains(valErr.Error(), "cho_title") {
		t.Fatalf("error does not name the failing field: %v", valErr)
	}
	_ = w.Flush()
	if buf.Len() != 0 {
		t.Fatalf("partial output emitted: %q", buf.String())
	}
}

func TestOutputIsNFCNormalized(t *testing.T) {
	// U+0065 U+0301 (decomposed é) must come out as U+00E9.
	rec := ir.Record{
		"id":                              "bnf-1",
		"cho_title":                       ir.LangMap{"fr": {"Procédé"}},
		"agg_data_provider":               ir.LangMap{"en": {"Lib"}, "ar-Arab": {"مكتبة"}},
		"agg_data_provider_collection":    ir.LangMap{"en": {"C"}, "ar-Arab": {"مجموعة"}},
		"agg_data_provider_collection_id": "bnf-c",
		"agg_data_provider_country":       ir.LangMap{"en": {"France"}, "ar-Arab": {"فرنسا"}},
		"agg_provider":                    ir.LangMap{"en": {"Agg"}, "ar-Arab": {"مجمع"}},
		"agg_provider_country":            ir.LangMap{"en": {"US"}, "ar-Arab": {"امريكا"}},
	}
	var buf bytes.Buffer
	w := New(&buf, validate.New(nil))
	if err := w.Write(rec); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if strings.Contains(buf.String(), "́") {
		t.Fatal("output still contains combining acute accent")
	}
	if !strings.Contains(buf.String(), "Procédé") {
		t.Fatalf("composed form missing: %q", buf.String())
	}
}
