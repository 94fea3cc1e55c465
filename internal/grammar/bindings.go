package grammar

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Binding is a grammar compiled into the binary. Discovered grammars are
// matched to a binding by Name, then by Scope. FileTypes are the defaults
// used when no discovered grammar claims a file.
type Binding struct {
	Name      string
	Scope     string
	FileTypes []string
	Load      func() *tree_sitter.Language
}

// Language is a resolved grammar ready to be handed to a parser.
type Language struct {
	Name string
	TS   *tree_sitter.Language
}

// DefaultBindings returns the Go, Python, Rust, TypeScript and TSX grammars
// linked into the binary.
func DefaultBindings() []Binding {
	return []Binding{
		{
			Name:      "go",
			Scope:     "source.go",
			FileTypes: []string{"go"},
			Load:      func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_go.Language()) },
		},
		{
			Name:      "python",
			Scope:     "source.python",
			FileTypes: []string{"py", "pyi"},
			Load:      func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_python.Language()) },
		},
		{
			Name:      "rust",
			Scope:     "source.rust",
			FileTypes: []string{"rs"},
			Load:      func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_rust.Language()) },
		},
		{
			Name:      "typescript",
			Scope:     "source.ts",
			FileTypes: []string{"ts", "mts", "cts"},
			Load: func() *tree_sitter.Language {
				return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
			},
		},
		{
			Name:      "tsx",
			Scope:     "source.tsx",
			FileTypes: []string{"tsx"},
			Load:      func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()) },
		},
	}
}
