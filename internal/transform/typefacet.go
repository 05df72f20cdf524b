package transform

import "medina/internal/ir"

const (
	edmTypeField   = "cho_edm_type"
	hasTypeField   = "cho_has_type"
	typeFacetField = "cho_type_facet"

	// facetSeparator joins the coarse and fine type into one hierarchy level.
	facetSeparator = ":"
)

// DeriveTypeFacet combines normalized cho_edm_type and cho_has_type into the
// hierarchical cho_type_facet. It must run after NormalizeLanguageHash has
// processed both source fields; the facet itself never goes through the
// normalizer.
//
// For every language in cho_edm_type: the first edm_type value is the primary
// facet, and when cho_has_type has a first value for the same language the
// two-level "primary:secondary" entry is appended. Languages present only in
// cho_has_type produce nothing.
func DeriveTypeFacet(rec ir.Record, _ *Context) (ir.Record, error) {
	out := rec.Clone()

	edm, ok := ir.AsLangMap(out[edmTypeField])
	if !ok {
		delete(out, typeFacetField)
		return out, nil
	}
	has, _ := ir.AsLangMap(out[hasTypeField])

	facet := ir.LangMap{}
	for lang, values := range edm {
		var primary, secondary string
		if len(values) > 0 {
			primary = values[0]
		}
		if len(has[lang]) > 0 {
			secondary = has[lang][0]
		}
		entry := facetValues(primary, secondary)
		if len(entry) > 0 {
			facet[lang] = entry
		}
	}

	if len(facet) == 0 {
		delete(out, typeFacetField)
		return out, nil
	}
	out[typeFacetField] = facet
	return out, nil
}

func facetValues(primary, secondary string) []string {
	switch {
	case primary == "" && secondary == "":
		return nil
	case primary == "":
		return []string{secondary}
	case secondary == "":
		return []string{primary}
	default:
		return []string{primary, primary + facetSeparator + secondary}
	}
}
