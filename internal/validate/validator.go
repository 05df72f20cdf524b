// Package validate is the final gate of the transformation pipeline: it
// checks a normalized, faceted, cardinality-adjusted record against the IR
// contract and rejects any departure in shape or controlled-vocabulary
// membership before the record is written out.
package validate

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"medina/internal/ir"
	"medina/internal/langtag"
)

// notFound is the marker some extraction macros leave behind when a language
// lookup failed; seeing it in the final IR is itself an error.
const notFound = "NOT FOUND"

var urlPattern = regexp.MustCompile(`^(?:https?://)`)

// excludedFromNotFound lists the optional language mappings whose values may
// never be the NOT FOUND marker.
var excludedFromNotFound = map[string]bool{
	"cho_description": true,
	"cho_language":    true,
}

// Validator checks records against the IR contract table.
type Validator struct {
	profile *langtag.Profile
}

// New creates a Validator over the given run profile.
func New(profile *langtag.Profile) *Validator {
	if profile == nil {
		profile = langtag.DefaultProfile()
	}
	return &Validator{profile: profile}
}

// Validate applies every contract rule to the record and returns the full
// set of violations. An empty set means the record may be emitted.
func (v *Validator) Validate(rec ir.Record) ErrorSet {
	errs := ErrorSet{}

	for _, field := range contractFields() {
		spec := ir.Contract[field]
		value, present := rec[field]
		if !present {
			if spec.Required {
				errs.Add(field, "is missing")
			}
			continue
		}
		v.checkField(field, spec, value, errs)
	}

	for field := range rec {
		if _, known := ir.Contract[field]; !known {
			errs.Add(field, "is not a recognized field")
		}
	}

	return errs
}

func (v *Validator) checkField(field string, spec ir.FieldSpec, value any, errs ErrorSet) {
	switch spec.Kind {
	case ir.KindScalar:
		v.checkScalar(field, value, errs)
	case ir.KindStringList:
		v.checkStringList(field, value, errs)
	case ir.KindLangMap:
		v.checkLangMap(field, spec, value, errs)
	case ir.KindWebResource:
		v.checkWebResourceField(field, spec, value, errs)
	case ir.KindWebResourceList:
		v.checkWebResourceList(field, spec, value, errs)
	}
}

func (v *Validator) checkScalar(field string, value any, errs ErrorSet) {
	s, ok := value.(string)
	if !ok {
		errs.Add(field, "must be a string")
		return
	}
	switch field {
	case "id":
		// ids are institution-scoped slugs, never URLs.
		if strings.Contains(s, "http") {
			errs.Add(field, "must not contain http")
		}
	case "agg_data_provider_collection_id":
		// a literal dot almost always means a filename leaked through.
		if strings.Contains(s, ".") {
			errs.Add(field, "must not contain a period")
		}
	}
}

func (v *Validator) checkStringList(field string, value any, errs ErrorSet) {
	switch t := value.(type) {
	case string:
	case []string:
	case []any:
		for _, e := range t {
			if _, ok := e.(string); !ok {
				errs.Add(field, "must contain only strings")
				return
			}
		}
	default:
		errs.Add(field, "must be a string or an array of strings")
	}
}

func (v *Validator) checkLangMap(field string, spec ir.FieldSpec, value any, errs ErrorSet) {
	buckets, ok := rawLangMap(value)
	if !ok {
		errs.Add(field, "must be a language hash")
		return
	}

	if field == "cho_title" && !hasAnyValue(buckets) {
		errs.Add(field, "no values provided")
	}

	for lang, raw := range buckets {
		if !v.profile.Languages.Contains(lang) {
			errs.Add(field, "unknown language code %q", lang)
		}
		values, allStrings := stringValues(raw)
		if !allStrings {
			errs.Add(field, "values for %q must all be strings", lang)
			continue
		}
		if excludedFromNotFound[field] {
			for _, val := range values {
				if val == notFound {
					errs.Add(field, "unknown language found")
					break
				}
			}
		}
		if spec.VocabularyEN != "" && lang == "en" {
			v.checkVocabulary(field, spec.VocabularyEN, values, errs)
		}
	}

	if spec.RequiredBilingual {
		if _, ok := buckets["ar-Arab"]; !ok {
			errs.Add(field, "Arabic language code is missing from %s", field)
		}
		if _, ok := buckets["en"]; !ok {
			errs.Add(field, "English language code is missing from %s", field)
		}
	}
}

// checkVocabulary verifies every en value against the controlled vocabulary.
// Membership is checked per element; all offending values are reported in one
// message.
func (v *Validator) checkVocabulary(field, vocabName string, values []string, errs ErrorSet) {
	vocab := v.profile.Vocabulary(vocabName)
	if vocab == nil {
		return
	}
	var bad []string
	for _, val := range values {
		if !vocab.Contains(val) {
			bad = append(bad, val)
		}
	}
	if len(bad) > 0 {
		errs.Add(field, "unexpected %s value(s) found: %s", vocabName, strings.Join(bad, ", "))
	}
}

func (v *Validator) checkWebResourceField(field string, spec ir.FieldSpec, value any, errs ErrorSet) {
	wr, ok := value.(map[string]any)
	if !ok {
		errs.Add(field, "must be a web resource")
		return
	}
	if spec.SkipWebResource {
		// agg_preview: thumbnails commonly lack full web-resource shape.
		return
	}
	v.checkWebResource(field, wr, errs)
}

func (v *Validator) checkWebResourceList(field string, spec ir.FieldSpec, value any, errs ErrorSet) {
	items, ok := value.([]any)
	if !ok {
		errs.Add(field, "must be an array of web resources")
		return
	}
	for i, item := range items {
		wr, ok := item.(map[string]any)
		if !ok {
			errs.Add(elemPath(field, i), "must be a web resource")
			continue
		}
		if !spec.SkipWebResource {
			v.checkWebResource(elemPath(field, i), wr, errs)
		}
	}
}

func (v *Validator) checkWebResource(path string, wr map[string]any, errs ErrorSet) {
	id, present := wr[ir.WRID]
	switch {
	case !present:
		errs.Add(path+"."+ir.WRID, "is missing")
	default:
		s, ok := id.(string)
		if !ok || s == "" {
			errs.Add(path+"."+ir.WRID, "must be a non-empty string")
		} else if !urlPattern.MatchString(s) {
			errs.Add(path+"."+ir.WRID, "must be an absolute http(s) URL")
		}
	}

	if raw, ok := wr[ir.WRFormat]; ok {
		checkStringArray(path+"."+ir.WRFormat, raw, errs, nil)
	}
	if raw, ok := wr[ir.WRIsReferencedBy]; ok {
		checkStringArray(path+"."+ir.WRIsReferencedBy, raw, errs, func(s string) bool {
			return urlPattern.MatchString(s)
		})
	}
	if raw, ok := wr[ir.WRHasService]; ok {
		v.checkServices(path+"."+ir.WRHasService, raw, errs)
	}
}

func (v *Validator) checkServices(path string, raw any, errs ErrorSet) {
	services, ok := raw.([]any)
	if !ok {
		errs.Add(path, "must be an array of services")
		return
	}
	for i, item := range services {
		svc, ok := item.(map[string]any)
		p := elemPath(path, i)
		if !ok {
			errs.Add(p, "must be a service object")
			continue
		}
		if id, ok := svc[ir.ServiceID].(string); !ok || id == "" {
			errs.Add(p+"."+ir.ServiceID, "must be a non-empty string")
		}
		conforms, present := svc[ir.ServiceConformsTo]
		if !present {
			errs.Add(p+"."+ir.ServiceConformsTo, "is missing")
		} else {
			checkStringArray(p+"."+ir.ServiceConformsTo, conforms, errs, nil)
		}
		if impl, present := svc[ir.ServiceImplements]; present {
			if _, ok := impl.(string); !ok {
				errs.Add(p+"."+ir.ServiceImplements, "must be a string")
			}
		}
	}
}

func checkStringArray(path string, raw any, errs ErrorSet, valid func(string) bool) {
	var values []string
	switch t := raw.(type) {
	case []string:
		values = t
	case []any:
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				errs.Add(path, "must contain only strings")
				return
			}
			values = append(values, s)
		}
	default:
		errs.Add(path, "must be an array of strings")
		return
	}
	if valid == nil {
		return
	}
	for _, s := range values {
		if !valid(s) {
			errs.Add(path, "value %q is not an absolute http(s) URL", s)
		}
	}
}

func elemPath(field string, i int) string {
	return field + "[" + strconv.Itoa(i) + "]"
}

func rawLangMap(value any) (map[string]any, bool) {
	switch t := value.(type) {
	case map[string]any:
		return t, true
	case ir.LangMap:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[k] = v
		}
		return out, true
	case map[string][]string:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[k] = v
		}
		return out, true
	default:
		return nil, false
	}
}

func stringValues(raw any) ([]string, bool) {
	switch t := raw.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func hasAnyValue(buckets map[string]any) bool {
	for _, raw := range buckets {
		if values, ok := stringValues(raw); ok && len(values) > 0 {
			return true
		}
	}
	return false
}

func contractFields() []string {
	fields := make([]string, 0, len(ir.Contract))
	for f := range ir.Contract {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}
