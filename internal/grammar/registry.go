package grammar

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrConfig is returned when the grammar configuration location cannot
	// be determined, read, or written.
	ErrConfig = errors.New("grammar configuration error")

	// ErrGrammarInstall is returned when cloning a catalog entry fails.
	ErrGrammarInstall = errors.New("grammar install failed")

	// ErrLanguageResolution marks a file for which no grammar matches.
	ErrLanguageResolution = errors.New("no grammar for file")
)

// Cloner fetches a grammar repository into dir.
type Cloner interface {
	Clone(ctx context.Context, url, dir string) error
}

// Options configures a Registry. The caller supplies every default: the
// configuration directory, the fallback catalog and the linked bindings.
type Options struct {
	// ConfigDir holds config.json, parsers.json and the parsers/ clone root.
	// If it names a file, that file is used as the catalog and its directory
	// as the configuration directory.
	ConfigDir string

	// Catalog is written as parsers.json when none exists and
	// SaveDefaultIfMissing is set.
	Catalog Catalog

	SaveDefaultIfMissing bool

	// Bindings defaults to DefaultBindings.
	Bindings []Binding

	// Cloner is required by InstallMissing only.
	Cloner Cloner
}

// Registry resolves grammars for file paths. It is not safe for concurrent
// use; discovery state is built once in Load.
type Registry struct {
	configDir   string
	parsersDir  string
	searchPaths []string
	catalog     Catalog
	grammars    []Grammar
	cloner      Cloner

	bindings   map[string]Binding
	loaded     map[string]*Language
	byFileType map[string]string // file type -> grammar name
}

// DefaultConfigDir returns the platform configuration directory shared with
// the tree-sitter CLI.
func DefaultConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return filepath.Join(dir, "tree-sitter"), nil
}

// Load reads the grammar configuration and discovers grammars on the
// configured search paths.
func Load(opts Options) (*Registry, error) {
	if opts.ConfigDir == "" {
		return nil, fmt.Errorf("%w: no configuration directory", ErrConfig)
	}

	configDir := opts.ConfigDir
	catalogPath := filepath.Join(configDir, catalogFile)
	if info, err := os.Stat(configDir); err == nil && !info.IsDir() {
		catalogPath = configDir
		configDir = filepath.Dir(configDir)
	}
	parsersDir := filepath.Join(configDir, parsersDirName)

	search, err := loadSearchConfig(filepath.Join(configDir, searchConfigFile), parsersDir, opts.SaveDefaultIfMissing)
	if err != nil {
		return nil, err
	}
	catalog, err := loadCatalog(catalogPath, opts.Catalog, opts.SaveDefaultIfMissing)
	if err != nil {
		return nil, err
	}

	bindings := opts.Bindings
	if bindings == nil {
		bindings = DefaultBindings()
	}

	r := &Registry{
		configDir:   configDir,
		parsersDir:  parsersDir,
		searchPaths: search.ParserDirectories,
		catalog:     catalog,
		cloner:      opts.Cloner,
		bindings:    make(map[string]Binding, len(bindings)),
		loaded:      make(map[string]*Language),
		byFileType:  make(map[string]string),
	}

	for _, b := range bindings {
		r.bindings[b.Name] = b
		for _, ft := range b.FileTypes {
			r.byFileType[ft] = b.Name
		}
	}

	if err := r.discover(); err != nil {
		return nil, err
	}
	return r, nil
}

// discover rescans the search paths. File types claimed by discovered
// grammars take precedence over the bindings' defaults.
func (r *Registry) discover() error {
	grammars, err := discover(r.searchPaths)
	if err != nil {
		return err
	}
	r.grammars = grammars
	for _, g := range grammars {
		name := r.bindingName(g)
		for _, ft := range g.FileTypes {
			r.byFileType[ft] = name
		}
	}
	return nil
}

// bindingName maps a discovered grammar onto a linked binding, falling back
// to the grammar's own name when none matches.
func (r *Registry) bindingName(g Grammar) string {
	if _, ok := r.bindings[g.Name]; ok {
		return g.Name
	}
	if g.Scope != "" {
		for _, b := range r.bindings {
			if b.Scope == g.Scope {
				return b.Name
			}
		}
	}
	return g.Name
}

// ResolveLanguage returns the grammar for path, matched by extension or by
// full file name. It reports false when nothing matches.
func (r *Registry) ResolveLanguage(path string) (*Language, bool) {
	base := filepath.Base(path)
	name, ok := r.byFileType[strings.TrimPrefix(filepath.Ext(base), ".")]
	if !ok || filepath.Ext(base) == "" {
		name, ok = r.byFileType[base]
	}
	if !ok {
		return nil, false
	}

	if lang, ok := r.loaded[name]; ok {
		return lang, true
	}
	b, ok := r.bindings[name]
	if !ok {
		log.Printf("grammar: %s matches grammar %q, which is not linked into this binary", path, name)
		return nil, false
	}
	lang := &Language{Name: name, TS: b.Load()}
	r.loaded[name] = lang
	return lang, true
}

// ConfiguredSearchPaths returns the grammar search directories.
func (r *Registry) ConfiguredSearchPaths() []string {
	out := make([]string, len(r.searchPaths))
	copy(out, r.searchPaths)
	return out
}

// Grammars returns the grammars discovered on the search paths.
func (r *Registry) Grammars() []Grammar {
	out := make([]Grammar, len(r.grammars))
	copy(out, r.grammars)
	return out
}

// ConfigDir is the resolved grammar configuration directory.
func (r *Registry) ConfigDir() string {
	return r.configDir
}

// ParsersDir is the directory catalog entries are cloned into.
func (r *Registry) ParsersDir() string {
	return r.parsersDir
}

// Catalog returns the loaded catalog with derived clone paths.
func (r *Registry) Catalog() ([]Descriptor, error) {
	out := make([]Descriptor, 0, len(r.catalog.Parsers))
	for _, u := range r.catalog.Parsers {
		p, err := RepoPath(r.parsersDir, u)
		if err != nil {
			return nil, err
		}
		out = append(out, Descriptor{URL: u, Path: p})
	}
	return out, nil
}

// Missing returns catalog entries whose clone path does not exist.
func (r *Registry) Missing() ([]Descriptor, error) {
	all, err := r.Catalog()
	if err != nil {
		return nil, err
	}
	var out []Descriptor
	seen := make(map[string]bool)
	for _, d := range all {
		if seen[d.Path] {
			continue
		}
		seen[d.Path] = true
		if _, err := os.Stat(d.Path); errors.Is(err, os.ErrNotExist) {
			out = append(out, d)
		}
	}
	return out, nil
}

// InstallMissing clones every catalog entry that has no local clone, one at
// a time, and stops at the first failure. Search paths are rescanned
// afterwards so freshly cloned grammars resolve.
func (r *Registry) InstallMissing(ctx context.Context) error {
	missing, err := r.Missing()
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		return nil
	}
	if r.cloner == nil {
		return fmt.Errorf("%w: no cloner configured", ErrGrammarInstall)
	}
	for _, d := range missing {
		if err := r.cloner.Clone(ctx, d.URL, d.Path); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrGrammarInstall, d.URL, err)
		}
	}
	return r.discover()
}
