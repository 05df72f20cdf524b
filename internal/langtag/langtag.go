// Package langtag holds the recognized language-code allowlist and the
// controlled vocabularies for cho_edm_type / cho_has_type. Both are plain
// configured lists; "none" is always accepted in addition to the configured
// entries.
package langtag

import "medina/internal/ir"

// Set is a membership list with the "none" sentinel always included.
type Set struct {
	members map[string]struct{}
}

// NewSet builds a Set from the configured entries plus "none".
func NewSet(entries []string) *Set {
	m := make(map[string]struct{}, len(entries)+1)
	for _, e := range entries {
		if e != "" {
			m[e] = struct{}{}
		}
	}
	m[ir.LanguageNone] = struct{}{}
	return &Set{members: m}
}

// Contains reports whether code is a recognized member.
func (s *Set) Contains(code string) bool {
	if s == nil {
		return false
	}
	_, ok := s.members[code]
	return ok
}

// Profile bundles the three configured lists a run validates against.
type Profile struct {
	Languages *Set
	EDMTypes  *Set
	HasTypes  *Set
}

// Vocabulary returns the Set registered under the contract table's
// VocabularyEN name, or nil when the name is unknown.
func (p *Profile) Vocabulary(name string) *Set {
	switch name {
	case "edm_type":
		return p.EDMTypes
	case "has_type":
		return p.HasTypes
	default:
		return nil
	}
}

// defaultLanguages is the standard application-profile allowlist. Institutions
// may override it with a languages.json config file.
var defaultLanguages = []string{
	"am", "ar", "ar-Arab", "ar-Latn", "az", "bn", "bs", "cop", "de", "el",
	"en", "es", "fa", "fr", "gez", "he", "hi", "hy", "id", "it", "iw",
	"ja", "jrb", "ka", "ku", "la", "ml", "ms", "nl", "ota", "pl", "prs",
	"ps", "pt", "ru", "sq", "sw", "syc", "syr", "ta", "tr", "uk", "ur", "uz", "zh",
}

var defaultEDMTypes = []string{
	"Dataset", "Image", "Sound", "Text", "Video", "3D",
}

var defaultHasTypes = []string{
	"Books", "Cartographic", "Culinary Objects", "Inscriptions", "Journals",
	"Manuscript", "Manuscripts", "Maps", "Music", "Musical Notation",
	"Newspapers", "Object", "Paintings", "Periodicals", "Photograph",
	"Photographs", "Postcards", "Posters", "Sculptures", "Sound Recordings",
	"Textiles",
}

// DefaultProfile is the compiled-in profile used when no config dir is given.
func DefaultProfile() *Profile {
	return &Profile{
		Languages: NewSet(defaultLanguages),
		EDMTypes:  NewSet(defaultEDMTypes),
		HasTypes:  NewSet(defaultHasTypes),
	}
}
