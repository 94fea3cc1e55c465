package grammar

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Grammar is a grammar repository found on one of the search paths.
type Grammar struct {
	Name      string   `json:"name"`
	Scope     string   `json:"scope,omitempty"`
	FileTypes []string `json:"fileTypes"`
	Dir       string   `json:"dir"`
}

// treeSitterJSON is the subset of tree-sitter.json read during discovery.
type treeSitterJSON struct {
	Grammars []struct {
		Name      string   `json:"name"`
		Scope     string   `json:"scope"`
		FileTypes []string `json:"file-types"`
	} `json:"grammars"`
}

// packageJSON covers grammars that predate tree-sitter.json and declare
// their file types in package.json.
type packageJSON struct {
	Name       string `json:"name"`
	TreeSitter []struct {
		Scope     string   `json:"scope"`
		FileTypes []string `json:"file-types"`
	} `json:"tree-sitter"`
}

// discover scans each search directory, and its immediate subdirectories,
// for grammar repositories. Missing search directories are skipped.
func discover(searchPaths []string) ([]Grammar, error) {
	var out []Grammar
	for _, dir := range searchPaths {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("%w: read search path %s: %v", ErrConfig, dir, err)
		}

		found, err := readGrammarDir(dir)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)

		for _, e := range entries {
			if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			found, err := readGrammarDir(filepath.Join(dir, e.Name()))
			if err != nil {
				return nil, err
			}
			out = append(out, found...)
		}
	}
	return out, nil
}

// readGrammarDir returns the grammars declared in dir, or nil if dir is not a
// grammar repository.
func readGrammarDir(dir string) ([]Grammar, error) {
	data, err := os.ReadFile(filepath.Join(dir, "tree-sitter.json"))
	if err == nil {
		var ts treeSitterJSON
		if err := json.Unmarshal(data, &ts); err != nil {
			return nil, fmt.Errorf("%w: decode %s/tree-sitter.json: %v", ErrConfig, dir, err)
		}
		out := make([]Grammar, 0, len(ts.Grammars))
		for _, g := range ts.Grammars {
			out = append(out, Grammar{Name: g.Name, Scope: g.Scope, FileTypes: g.FileTypes, Dir: dir})
		}
		return out, nil
	}

	data, err = os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return nil, nil
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		// A package.json that is not a grammar manifest is not an error.
		return nil, nil
	}
	name := strings.TrimPrefix(pkg.Name, "tree-sitter-")
	var out []Grammar
	for _, g := range pkg.TreeSitter {
		n := name
		if len(pkg.TreeSitter) > 1 {
			n = scopeName(g.Scope, name)
		}
		out = append(out, Grammar{Name: n, Scope: g.Scope, FileTypes: g.FileTypes, Dir: dir})
	}
	return out, nil
}

// scopeName turns "source.tsx" into "tsx".
func scopeName(scope, fallback string) string {
	if i := strings.LastIndexByte(scope, '.'); i >= 0 && i < len(scope)-1 {
		return scope[i+1:]
	}
	return fallback
}
