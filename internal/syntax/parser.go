package syntax

import (
	"context"
	"errors"
	"fmt"
	"time"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/diffdiagram/internal/grammar"
)

// DefaultTimeout bounds a single parse: 1,000,000 microseconds.
const DefaultTimeout = 1_000_000 * time.Microsecond

var (
	// ErrParseTimeout is returned when parsing exceeds the parser timeout.
	ErrParseTimeout = errors.New("parse timed out")

	// ErrParseFailure is returned when no tree is produced, typically because
	// the grammar cannot be loaded for the source.
	ErrParseFailure = errors.New("parse failed")
)

// Parser parses whole source files into syntax trees. A new tree-sitter
// parser is created per Parse call, so a Parser can be reused sequentially.
type Parser struct {
	timeout time.Duration
}

// NewParser returns a Parser with the given per-call timeout. A
// non-positive timeout selects DefaultTimeout.
func NewParser(timeout time.Duration) *Parser {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Parser{timeout: timeout}
}

// Timeout returns the per-call parse timeout.
func (p *Parser) Timeout() time.Duration {
	return p.timeout
}

// Parse parses source with lang. The caller owns the returned tree. Parsing
// stops at the timeout or when ctx is done, whichever comes first.
func (p *Parser) Parse(ctx context.Context, lang *grammar.Language, source []byte) (*tree_sitter.Tree, error) {
	if lang == nil || lang.TS == nil {
		return nil, fmt.Errorf("%w: no language", ErrParseFailure)
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(lang.TS); err != nil {
		return nil, fmt.Errorf("%w: set language %s: %v", ErrParseFailure, lang.Name, err)
	}

	deadline := time.Now().Add(p.timeout)
	timedOut := false
	opts := &tree_sitter.ParseOptions{
		ProgressCallback: func(tree_sitter.ParseState) bool {
			if ctx.Err() != nil {
				return true
			}
			if time.Now().After(deadline) {
				timedOut = true
			}
			return timedOut
		},
	}

	read := func(offset int, _ tree_sitter.Point) []byte {
		if offset >= len(source) {
			return nil
		}
		return source[offset:]
	}

	tree := parser.ParseWithOptions(read, nil, opts)
	if tree == nil {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("parse %s: %w", lang.Name, err)
		}
		if timedOut {
			return nil, fmt.Errorf("%w after %s (%s)", ErrParseTimeout, p.timeout, lang.Name)
		}
		return nil, fmt.Errorf("%w: %s produced no tree", ErrParseFailure, lang.Name)
	}
	return tree, nil
}
