package langtag

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Loader resolves profile lists from JSON files under a config directory,
// falling back to the compiled-in defaults for any file that is absent.
// Parsed files are cached by absolute path so that repeated runs over many
// institutions do not re-read shared lists.
type Loader struct {
	dir   string
	cache *lru.Cache[string, []string]
}

const (
	languagesFile = "languages.json"
	edmTypesFile  = "edm_types.json"
	hasTypesFile  = "has_types.json"
)

// NewLoader creates a Loader rooted at dir. An empty dir means defaults only.
func NewLoader(dir string) (*Loader, error) {
	cache, err := lru.New[string, []string](64)
	if err != nil {
		return nil, err
	}
	return &Loader{dir: dir, cache: cache}, nil
}

// Load assembles the run profile from the config dir plus defaults.
func (l *Loader) Load() (*Profile, error) {
	langs, err := l.list(languagesFile, defaultLanguages)
	if err != nil {
		return nil, err
	}
	edm, err := l.list(edmTypesFile, defaultEDMTypes)
	if err != nil {
		return nil, err
	}
	has, err := l.list(hasTypesFile, defaultHasTypes)
	if err != nil {
		return nil, err
	}
	return &Profile{
		Languages: NewSet(langs),
		EDMTypes:  NewSet(edm),
		HasTypes:  NewSet(has),
	}, nil
}

func (l *Loader) list(name string, fallback []string) ([]string, error) {
	if l.dir == "" {
		return fallback, nil
	}
	path, err := filepath.Abs(filepath.Join(l.dir, name))
	if err != nil {
		return nil, err
	}
	if cached, ok := l.cache.Get(path); ok {
		return cached, nil
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fallback, nil
	}
	if err != nil {
		return nil, fmt.Errorf("langtag: read %s: %w", name, err)
	}
	var entries []string
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("langtag: parse %s: %w", name, err)
	}
	l.cache.Add(path, entries)
	return entries, nil
}
