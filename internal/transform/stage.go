// Package transform holds the per-record pipeline stages: language-hash
// normalization, type-facet derivation and web-resource cardinality
// adjustment. Stages are pure functions over one record's output mapping and
// are registered by name so a run can compose them from configuration.
package transform

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"medina/internal/ir"
	"medina/internal/langtag"
)

// Context is the shared per-run environment handed to every stage.
type Context struct {
	// Source identifies the institution config the record came from; it is
	// carried explicitly for log and error context.
	Source string
	// Fields lists the field names the normalizer processes. The derived
	// cho_type_facet must never appear here.
	Fields  []string
	Profile *langtag.Profile
	Logger  *zap.Logger
}

func (c *Context) logger() *zap.Logger {
	if c == nil || c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// StageFunc transforms one record. Implementations must not mutate the input
// in a way observable to the caller; they return a fresh or copied record.
type StageFunc func(rec ir.Record, sctx *Context) (ir.Record, error)

// StageSpec declares one named pipeline stage.
type StageSpec struct {
	Key         string
	Description string
	Run         StageFunc
}

// StageResolver resolves stage keys to specs.
type StageResolver interface {
	Get(key string) (StageSpec, bool)
	List() []StageSpec
}

// MapResolver is a StageResolver backed by a map keyed by normalized keys.
type MapResolver struct {
	specs map[string]StageSpec
}

func (r MapResolver) Get(key string) (StageSpec, bool) {
	if len(r.specs) == 0 {
		return StageSpec{}, false
	}
	spec, ok := r.specs[normalizeKey(key)]
	return spec, ok
}

func (r MapResolver) List() []StageSpec {
	specs := make([]StageSpec, 0, len(r.specs))
	for _, s := range r.specs {
		specs = append(specs, s)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Key < specs[j].Key })
	return specs
}

// Registry returns the resolver over the built-in stages.
func Registry() StageResolver {
	specs := map[string]StageSpec{}
	for _, s := range builtinStages {
		specs[normalizeKey(s.Key)] = s
	}
	return MapResolver{specs: specs}
}

var builtinStages = []StageSpec{
	{Key: "lang_hash", Description: "convert accumulated tagged values into language mappings", Run: NormalizeLanguageHash},
	{Key: "type_facet", Description: "derive cho_type_facet from cho_edm_type and cho_has_type", Run: DeriveTypeFacet},
	{Key: "cardinality", Description: "unwrap single-element wr_id sequences in web-resource fields", Run: AdjustCardinality},
}

// DefaultOrder is the stage order every record goes through; lang_hash must
// precede type_facet, and cardinality runs last before validation.
var DefaultOrder = []string{"lang_hash", "type_facet", "cardinality"}

// Resolve maps an ordered key list to stage specs, failing on unknown keys.
func Resolve(r StageResolver, keys []string) ([]StageSpec, error) {
	out := make([]StageSpec, 0, len(keys))
	for _, k := range keys {
		spec, ok := r.Get(k)
		if !ok {
			return nil, fmt.Errorf("transform: unknown stage %q", k)
		}
		out = append(out, spec)
	}
	return out, nil
}

// Apply runs the stages over rec in order, stopping at the first error.
func Apply(rec ir.Record, stages []StageSpec, sctx *Context) (ir.Record, error) {
	cur := rec
	for _, s := range stages {
		next, err := s.Run(cur, sctx)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
