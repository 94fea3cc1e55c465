package syntax

import (
	"errors"
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/diffdiagram/internal/diff"
)

// ErrEditApplication is returned for an edit whose byte range is invalid
// against the tree it is applied to.
var ErrEditApplication = errors.New("invalid edit")

// ApplyEdits applies edits to tree in order. Each edit is a structural
// tree edit, so node offsets after it shift before the next one is applied.
// sourceLen is the byte length of the text the tree was parsed from.
func ApplyEdits(tree *tree_sitter.Tree, sourceLen int, edits []diff.Edit) error {
	if tree == nil {
		return fmt.Errorf("%w: nil tree", ErrEditApplication)
	}
	for i, e := range edits {
		if e.StartByte > e.OldEndByte || e.StartByte > e.NewEndByte {
			return fmt.Errorf("%w: edit %d: start %d after end (old %d, new %d)",
				ErrEditApplication, i, e.StartByte, e.OldEndByte, e.NewEndByte)
		}
		// Edits are expressed against the original buffer, so the bound
		// is whichever is larger: the original text or the edited tree.
		bound := max(uint(sourceLen), tree.RootNode().EndByte())
		if e.OldEndByte > bound {
			return fmt.Errorf("%w: edit %d: old end %d beyond %d",
				ErrEditApplication, i, e.OldEndByte, bound)
		}
		tree.Edit(toInputEdit(e))
	}
	return nil
}

func toInputEdit(e diff.Edit) *tree_sitter.InputEdit {
	return &tree_sitter.InputEdit{
		StartByte:      e.StartByte,
		OldEndByte:     e.OldEndByte,
		NewEndByte:     e.NewEndByte,
		StartPosition:  toPoint(e.StartPosition),
		OldEndPosition: toPoint(e.OldEndPosition),
		NewEndPosition: toPoint(e.NewEndPosition),
	}
}

func toPoint(p diff.Point) tree_sitter.Point {
	return tree_sitter.Point{Row: p.Row, Column: p.Column}
}
