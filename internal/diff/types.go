package diff

import (
	"errors"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

var (
	// ErrMissingSourceFile is returned when a diff's source file cannot be
	// read from the repository.
	ErrMissingSourceFile = errors.New("source file not found")

	// ErrLineIndexExhausted is returned when a diff references a line past
	// the end of the file, which means the diff does not match the file.
	ErrLineIndexExhausted = errors.New("line index exhausted")

	// ErrMissingLineNumber is returned when a context or removed diff line
	// carries no source line number.
	ErrMissingLineNumber = errors.New("diff line has no source line number")
)

// LineKind classifies a diff line.
type LineKind string

const (
	LineContext LineKind = "context"
	LineAdded   LineKind = "added"
	LineRemoved LineKind = "removed"
)

// LineEntry is one line of a hunk. Line numbers are 1-based; zero means
// the line does not exist on that side of the diff.
type LineEntry struct {
	Kind       LineKind `json:"kind"`
	SourceLine int      `json:"sourceLine,omitempty"`
	TargetLine int      `json:"targetLine,omitempty"`
	Text       string   `json:"text"`
}

// Hunk is a contiguous block of a file diff.
type Hunk struct {
	SourceStart int         `json:"sourceStart"`
	SourceLines int         `json:"sourceLines"`
	TargetStart int         `json:"targetStart"`
	TargetLines int         `json:"targetLines"`
	Lines       []LineEntry `json:"lines"`
}

// FileDiff is the parsed diff of one file. Paths keep their a/ and b/
// prefixes.
type FileDiff struct {
	SourcePath string `json:"sourcePath"`
	TargetPath string `json:"targetPath"`
	Hunks      []Hunk `json:"hunks"`
}

// Point is a row/column position. Rows are diff line numbers, columns are
// byte offsets within the line.
type Point struct {
	Row    uint `json:"row"`
	Column uint `json:"column"`
}

// Edit describes one byte-range mutation of the source text, in the shape
// tree-sitter expects for incremental edits.
type Edit struct {
	StartByte      uint  `json:"startByte"`
	OldEndByte     uint  `json:"oldEndByte"`
	NewEndByte     uint  `json:"newEndByte"`
	StartPosition  Point `json:"startPosition"`
	OldEndPosition Point `json:"oldEndPosition"`
	NewEndPosition Point `json:"newEndPosition"`
}

// Diff is one file's translated diff. Tree and Language are filled in once
// the source has been parsed; Tree is owned by the Diff.
type Diff struct {
	Source     string
	SourcePath string
	TargetPath string
	Edits      []Edit
	Language   string
	Tree       *tree_sitter.Tree
}

// Close releases the syntax tree.
func (d *Diff) Close() {
	if d.Tree != nil {
		d.Tree.Close()
		d.Tree = nil
	}
}
