package diff

import (
	"fmt"
)

// Translate converts a file's hunks into byte-addressed edits against the
// source indexed by idx. Edits are ordered by hunk, then by line.
//
// A run of removed lines followed by added lines is a change: the first
// removed line pairs with the first added line, and so on. A paired edit
// replaces the original line with the added text. Unpaired removals are
// deletions and unpaired additions are insertions anchored just after the
// last source line seen.
func Translate(hunks []Hunk, idx *LineIndex) ([]Edit, error) {
	var edits []Edit
	for i, h := range hunks {
		out, _, err := translateHunk(h, idx)
		if err != nil {
			return nil, fmt.Errorf("hunk %d (@@ -%d,%d +%d,%d @@): %w",
				i+1, h.SourceStart, h.SourceLines, h.TargetStart, h.TargetLines, err)
		}
		edits = append(edits, out...)
	}
	return edits, nil
}

// translateHunk returns the hunk's edits and the last source line it
// touched.
func translateHunk(h Hunk, idx *LineIndex) ([]Edit, int, error) {
	// An empty source range starts after SourceStart, otherwise at it.
	last := h.SourceStart - 1
	if h.SourceLines == 0 {
		last = h.SourceStart
	}

	var edits []Edit
	var pending []int // removals waiting for a paired addition

	for _, entry := range h.Lines {
		switch entry.Kind {
		case LineContext:
			if entry.SourceLine == 0 {
				return nil, last, fmt.Errorf("%w: context line %q", ErrMissingLineNumber, entry.Text)
			}
			last = entry.SourceLine
			pending = pending[:0]

		case LineRemoved:
			if entry.SourceLine == 0 {
				return nil, last, fmt.Errorf("%w: removed line %q", ErrMissingLineNumber, entry.Text)
			}
			line, err := idx.Get(entry.SourceLine)
			if err != nil {
				return nil, last, err
			}
			row := uint(entry.SourceLine)
			start := uint(line.Offset)
			edits = append(edits, Edit{
				StartByte:      start,
				OldEndByte:     start + uint(len(line.Text)),
				NewEndByte:     start,
				StartPosition:  Point{Row: row},
				OldEndPosition: Point{Row: row, Column: uint(len(line.Text))},
				NewEndPosition: Point{Row: row - 1},
			})
			pending = append(pending, len(edits)-1)
			last = entry.SourceLine

		case LineAdded:
			if len(pending) > 0 {
				e := &edits[pending[0]]
				pending = pending[1:]
				e.NewEndByte = e.StartByte + uint(len(entry.Text))
				row := e.StartPosition.Row - 1
				if entry.TargetLine != 0 {
					row = uint(entry.TargetLine)
				}
				e.NewEndPosition = Point{Row: row, Column: uint(len(entry.Text))}
				continue
			}

			anchor, err := anchorAfter(idx, last)
			if err != nil {
				return nil, last, err
			}
			// The new end row is the anchor row, not the target row.
			row := uint(last)
			edits = append(edits, Edit{
				StartByte:      anchor,
				OldEndByte:     anchor,
				NewEndByte:     anchor + uint(len(entry.Text)),
				StartPosition:  Point{Row: row},
				OldEndPosition: Point{Row: row},
				NewEndPosition: Point{Row: row, Column: uint(len(entry.Text))},
			})

		default:
			return nil, last, fmt.Errorf("unknown diff line kind %q", entry.Kind)
		}
	}
	return edits, last, nil
}

// anchorAfter returns the byte offset just past source line n, or 0 when n
// is zero.
func anchorAfter(idx *LineIndex, n int) (uint, error) {
	if n == 0 {
		return 0, nil
	}
	line, err := idx.Get(n)
	if err != nil {
		return 0, err
	}
	return uint(line.Next), nil
}
