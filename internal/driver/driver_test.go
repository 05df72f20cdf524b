package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medina/internal/ir"
	"medina/internal/langtag"
	"medina/internal/runstate"
	"medina/internal/transform"
	"medina/internal/validate"
	"medina/internal/writer"
)

func tagged(lang string, values ...string) map[string]any {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return map[string]any{"language": lang, "values": vs}
}

func bilingualAcc(en, ar string) []any {
	return []any{tagged("en", en), tagged("ar-Arab", ar)}
}

func goodRecord(id string) map[string]any {
	return map[string]any{
		"id":                              id,
		"__source":                        "aub_config",
		"cho_title":                       []any{tagged("en", "Title " + id)},
		"agg_data_provider":               bilingualAcc("Lib", "مكتبة"),
		"agg_data_provider_collection":    bilingualAcc("Posters", "ملصقات"),
		"agg_data_provider_collection_id": "aub-posters",
		"agg_data_provider_country":       bilingualAcc("Lebanon", "لبنان"),
		"agg_provider":                    bilingualAcc("Agg", "مجمع"),
		"agg_provider_country":            bilingualAcc("US", "امريكا"),
	}
}

func ndjson(t *testing.T, records ...map[string]any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	for _, r := range records {
		line, err := json.Marshal(r)
		require.NoError(t, err)
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return &buf
}

func newDriver(t *testing.T, out *bytes.Buffer, skip bool, workers int) *Driver {
	t.Helper()
	stages, err := transform.Resolve(transform.Registry(), transform.DefaultOrder)
	require.NoError(t, err)
	profile := langtag.DefaultProfile()
	return &Driver{
		RunID:  "test-run",
		Stages: stages,
		Base: &transform.Context{
			Source:  "fallback_config",
			Fields:  ir.NormalizedFields(),
			Profile: profile,
		},
		Writer:      writer.New(out, validate.New(profile)),
		Workers:     workers,
		SkipOnError: skip,
		Processed:   &runstate.Counter{},
		Written:     &runstate.Counter{},
		Collector:   &runstate.Collector{},
	}
}

func TestRunAllValid(t *testing.T) {
	var out bytes.Buffer
	d := newDriver(t, &out, false, 4)
	in := ndjson(t, goodRecord("a"), goodRecord("b"), goodRecord("c"))

	summary, err := d.Run(context.Background(), in)
	require.NoError(t, err)
	assert.EqualValues(t, 3, summary.Processed)
	assert.EqualValues(t, 3, summary.Written)
	assert.EqualValues(t, 0, summary.Failed)
	assert.Equal(t, 3, strings.Count(out.String(), "\n"))
}

func TestRunSkipPolicyContinues(t *testing.T) {
	bad := goodRecord("bad")
	bad["cho_title"] = []any{"untagged scalar"}

	var out bytes.Buffer
	d := newDriver(t, &out, true, 1)
	in := ndjson(t, goodRecord("a"), bad, goodRecord("b"))

	summary, err := d.Run(context.Background(), in)
	require.NoError(t, err)
	assert.EqualValues(t, 3, summary.Processed)
	assert.EqualValues(t, 2, summary.Written)
	assert.EqualValues(t, 1, summary.Failed)

	failures := d.Collector.List()
	require.Len(t, failures, 1)
	assert.Equal(t, "bad", failures[0].RecordID)
	assert.Equal(t, "aub_config", failures[0].Source)
	var langErr *transform.UnspecifiedLanguageError
	assert.ErrorAs(t, failures[0].Err, &langErr)
}

func TestRunAbortPolicyStops(t *testing.T) {
	bad := goodRecord("bad")
	delete(bad, "agg_provider")

	var out bytes.Buffer
	d := newDriver(t, &out, false, 1)
	in := ndjson(t, bad, goodRecord("after"))

	_, err := d.Run(context.Background(), in)
	var valErr *validate.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Errors["agg_provider"], "is missing")
	assert.Zero(t, out.Len())
}

func TestRunValidationFailureCollected(t *testing.T) {
	bad := goodRecord("bad")
	bad["cho_edm_type"] = []any{tagged("en", "book")}

	var out bytes.Buffer
	d := newDriver(t, &out, true, 2)
	in := ndjson(t, bad, goodRecord("ok"))

	summary, err := d.Run(context.Background(), in)
	require.NoError(t, err)
	assert.EqualValues(t, 1, summary.Written)
	assert.EqualValues(t, 1, summary.Failed)
}
