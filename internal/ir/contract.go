package ir

// FieldKind is the shape a field must have in the final IR.
type FieldKind int

const (
	KindScalar FieldKind = iota
	KindStringList
	KindLangMap
	KindWebResource
	KindWebResourceList
)

// FieldSpec is one row of the IR contract table.
type FieldSpec struct {
	Kind              FieldKind
	Required          bool
	RequiredBilingual bool // must carry both "en" and "ar-Arab" keys
	VocabularyEN      string
	SkipWebResource   bool // shape-checked as web resource but contract-exempt
}

// Web-resource object keys.
const (
	WRID             = "wr_id"
	WRFormat         = "wr_format"
	WRIsReferencedBy = "wr_is_referenced_by"
	WRHasService     = "wr_has_service"

	ServiceID         = "service_id"
	ServiceConformsTo = "service_conforms_to"
	ServiceImplements = "service_implements"
)

// WebResourceFields lists every field that carries web-resource objects, in
// the order the cardinality adjuster walks them.
var WebResourceFields = []string{"agg_has_view", "agg_is_shown_at", "agg_is_shown_by", "agg_preview"}

// Contract is the IR field table the validator enforces. Fields absent from
// the table are rejected as unknown.
var Contract = map[string]FieldSpec{
	"id":       {Kind: KindScalar, Required: true},
	SourceField: {Kind: KindScalar},

	"cho_alternative":      {Kind: KindLangMap},
	"cho_contributor":      {Kind: KindLangMap},
	"cho_coverage":         {Kind: KindLangMap},
	"cho_creator":          {Kind: KindLangMap},
	"cho_date":             {Kind: KindLangMap},
	"cho_date_range_hijri": {Kind: KindStringList},
	"cho_date_range_norm":  {Kind: KindStringList},
	"cho_dc_rights":        {Kind: KindLangMap},
	"cho_description":      {Kind: KindLangMap},
	"cho_edm_type":         {Kind: KindLangMap, VocabularyEN: "edm_type"},
	"cho_extent":           {Kind: KindLangMap},
	"cho_format":           {Kind: KindLangMap},
	"cho_has_part":         {Kind: KindLangMap},
	"cho_has_type":         {Kind: KindLangMap, VocabularyEN: "has_type"},
	"cho_identifier":       {Kind: KindLangMap},
	"cho_is_part_of":       {Kind: KindLangMap},
	"cho_language":         {Kind: KindLangMap},
	"cho_medium":           {Kind: KindLangMap},
	"cho_provenance":       {Kind: KindLangMap},
	"cho_publisher":        {Kind: KindLangMap},
	"cho_relation":         {Kind: KindLangMap},
	"cho_same_as":          {Kind: KindLangMap},
	"cho_source":           {Kind: KindLangMap},
	"cho_spatial":          {Kind: KindLangMap},
	"cho_subject":          {Kind: KindLangMap},
	"cho_temporal":         {Kind: KindLangMap},
	"cho_title":            {Kind: KindLangMap, Required: true},
	"cho_type":             {Kind: KindLangMap},
	"cho_type_facet":       {Kind: KindLangMap},

	"agg_data_provider":               {Kind: KindLangMap, Required: true, RequiredBilingual: true},
	"agg_data_provider_collection":    {Kind: KindLangMap, Required: true, RequiredBilingual: true},
	"agg_data_provider_collection_id": {Kind: KindScalar, Required: true},
	"agg_data_provider_country":       {Kind: KindLangMap, Required: true, RequiredBilingual: true},
	"agg_edm_rights":                  {Kind: KindStringList},
	"agg_has_view":                    {Kind: KindWebResourceList},
	"agg_is_shown_at":                 {Kind: KindWebResource},
	"agg_is_shown_by":                 {Kind: KindWebResource},
	"agg_preview":                     {Kind: KindWebResource, SkipWebResource: true},
	"agg_provider":                    {Kind: KindLangMap, Required: true, RequiredBilingual: true},
	"agg_provider_country":            {Kind: KindLangMap, Required: true, RequiredBilingual: true},
	"agg_same_as":                     {Kind: KindStringList},
}

// NormalizedFields returns every contract field that ends up as a language
// mapping and therefore goes through the normalizer, except the derived type
// facet, which is produced after normalization and must never re-enter it.
func NormalizedFields() []string {
	out := make([]string, 0, len(Contract))
	for name, spec := range Contract {
		if spec.Kind == KindLangMap && name != "cho_type_facet" {
			out = append(out, name)
		}
	}
	return out
}
