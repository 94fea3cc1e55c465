package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ctx(src, tgt int, text string) LineEntry {
	return LineEntry{Kind: LineContext, SourceLine: src, TargetLine: tgt, Text: text}
}

func del(src int, text string) LineEntry {
	return LineEntry{Kind: LineRemoved, SourceLine: src, Text: text}
}

func add(tgt int, text string) LineEntry {
	return LineEntry{Kind: LineAdded, TargetLine: tgt, Text: text}
}

func TestTranslate_ChangedLine(t *testing.T) {
	idx := NewLineIndex("a\nb\nc\n")
	hunks := []Hunk{{
		SourceStart: 1, SourceLines: 3, TargetStart: 1, TargetLines: 3,
		Lines: []LineEntry{ctx(1, 1, "a"), del(2, "b"), add(2, "b2"), ctx(3, 3, "c")},
	}}

	edits, err := Translate(hunks, idx)
	require.NoError(t, err)
	require.Len(t, edits, 1)

	e := edits[0]
	assert.Equal(t, uint(2), e.StartByte)
	assert.Equal(t, uint(3), e.OldEndByte)
	assert.Equal(t, uint(4), e.NewEndByte)
	assert.Equal(t, uint(2), e.StartPosition.Row)
	assert.Equal(t, Point{Row: 2, Column: 1}, e.OldEndPosition)
	assert.Equal(t, Point{Row: 2, Column: 2}, e.NewEndPosition)
}

func TestTranslate_ContextOnlyHunk(t *testing.T) {
	idx := NewLineIndex("a\nb\nc\nd\n")
	h := Hunk{
		SourceStart: 2, SourceLines: 3, TargetStart: 2, TargetLines: 3,
		Lines: []LineEntry{ctx(2, 2, "b"), ctx(3, 3, "c"), ctx(4, 4, "d")},
	}

	edits, last, err := translateHunk(h, idx)
	require.NoError(t, err)
	assert.Empty(t, edits)
	assert.Equal(t, 4, last)
}

func TestTranslate_PureAddition(t *testing.T) {
	idx := NewLineIndex("a\nb\n")
	hunks := []Hunk{{
		SourceStart: 1, SourceLines: 2, TargetStart: 1, TargetLines: 3,
		Lines: []LineEntry{ctx(1, 1, "a"), add(2, "inserted"), ctx(2, 3, "b")},
	}}

	edits, err := Translate(hunks, idx)
	require.NoError(t, err)
	require.Len(t, edits, 1)

	e := edits[0]
	assert.Equal(t, e.StartByte, e.OldEndByte)
	assert.Equal(t, uint(2), e.StartByte, "anchored just past line 1")
	assert.Equal(t, uint(len("inserted")), e.NewEndByte-e.StartByte)
}

// Added lines use the preceding context row for their new end row rather
// than their target row.
func TestTranslate_AddedLineUsesAnchorRow(t *testing.T) {
	idx := NewLineIndex("a\nb\nc\n")
	hunks := []Hunk{{
		SourceStart: 1, SourceLines: 3, TargetStart: 1, TargetLines: 5,
		Lines: []LineEntry{ctx(1, 1, "a"), ctx(2, 2, "b"), add(3, "x"), add(4, "yy"), ctx(3, 5, "c")},
	}}

	edits, err := Translate(hunks, idx)
	require.NoError(t, err)
	require.Len(t, edits, 2)

	for _, e := range edits {
		assert.Equal(t, uint(2), e.NewEndPosition.Row)
		assert.Equal(t, uint(4), e.StartByte, "both additions anchor after line 2")
	}
	assert.Equal(t, uint(5), edits[0].NewEndByte)
	assert.Equal(t, uint(6), edits[1].NewEndByte)
}

func TestTranslate_PureDeletion(t *testing.T) {
	idx := NewLineIndex("keep\ndrop me\nkeep\n")
	hunks := []Hunk{{
		SourceStart: 1, SourceLines: 3, TargetStart: 1, TargetLines: 2,
		Lines: []LineEntry{ctx(1, 1, "keep"), del(2, "drop me"), ctx(3, 2, "keep")},
	}}

	edits, err := Translate(hunks, idx)
	require.NoError(t, err)
	require.Len(t, edits, 1)

	e := edits[0]
	assert.Equal(t, uint(5), e.StartByte)
	assert.Equal(t, uint(len("drop me")), e.OldEndByte-e.StartByte)
	assert.Equal(t, e.StartByte, e.NewEndByte)
	assert.Equal(t, uint(1), e.NewEndPosition.Row)
}

func TestTranslate_UnevenChangeRun(t *testing.T) {
	idx := NewLineIndex("one\ntwo\nthree\nfour\n")
	hunks := []Hunk{{
		SourceStart: 1, SourceLines: 4, TargetStart: 1, TargetLines: 5,
		Lines: []LineEntry{
			ctx(1, 1, "one"),
			del(2, "two"),
			del(3, "three"),
			add(2, "TWO"),
			add(3, "THREE!"),
			add(4, "extra"),
			ctx(4, 5, "four"),
		},
	}}

	edits, err := Translate(hunks, idx)
	require.NoError(t, err)
	require.Len(t, edits, 3)

	assert.Equal(t, Edit{
		StartByte: 4, OldEndByte: 7, NewEndByte: 7,
		StartPosition:  Point{Row: 2},
		OldEndPosition: Point{Row: 2, Column: 3},
		NewEndPosition: Point{Row: 2, Column: 3},
	}, edits[0])
	assert.Equal(t, uint(8), edits[1].StartByte)
	assert.Equal(t, uint(13), edits[1].OldEndByte)
	assert.Equal(t, uint(14), edits[1].NewEndByte)
	assert.Equal(t, uint(3), edits[1].NewEndPosition.Row)

	// The third added line has no removal left to pair with.
	assert.Equal(t, uint(14), edits[2].StartByte)
	assert.Equal(t, edits[2].StartByte, edits[2].OldEndByte)
	assert.Equal(t, uint(3), edits[2].NewEndPosition.Row)
}

func TestTranslate_ByteLengths(t *testing.T) {
	src := "héllo\nwörld\nsame\n"
	idx := NewLineIndex(src)
	hunks := []Hunk{{
		SourceStart: 1, SourceLines: 3, TargetStart: 1, TargetLines: 3,
		Lines: []LineEntry{del(1, "héllo"), add(1, "hallo wörld"), del(2, "wörld"), ctx(3, 3, "same")},
	}}

	edits, err := Translate(hunks, idx)
	require.NoError(t, err)
	require.Len(t, edits, 2)

	assert.Equal(t, uint(len("héllo")), edits[0].OldEndByte-edits[0].StartByte)
	assert.Equal(t, uint(len("hallo wörld")), edits[0].NewEndByte-edits[0].StartByte)
	assert.Equal(t, uint(len("wörld")), edits[1].OldEndByte-edits[1].StartByte)
	for _, e := range edits {
		assert.LessOrEqual(t, e.StartByte, e.OldEndByte)
		assert.LessOrEqual(t, e.StartByte, e.NewEndByte)
	}
}

func TestTranslate_InsertionHunkAtFileStart(t *testing.T) {
	idx := NewLineIndex("a\n")
	hunks := []Hunk{{
		SourceStart: 0, SourceLines: 0, TargetStart: 1, TargetLines: 1,
		Lines: []LineEntry{add(1, "// header")},
	}}

	edits, err := Translate(hunks, idx)
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, uint(0), edits[0].StartByte)
	assert.Equal(t, uint(9), edits[0].NewEndByte)
}

func TestTranslate_ZeroContextInsertion(t *testing.T) {
	// @@ -2,0 +3 @@ inserts after source line 2.
	idx := NewLineIndex("a\nb\nc\n")
	hunks := []Hunk{{
		SourceStart: 2, SourceLines: 0, TargetStart: 3, TargetLines: 1,
		Lines: []LineEntry{add(3, "new")},
	}}

	edits, err := Translate(hunks, idx)
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, uint(4), edits[0].StartByte)
}

func TestTranslate_EditsOrderedAcrossHunks(t *testing.T) {
	src := "l1\nl2\nl3\nl4\nl5\nl6\nl7\nl8\n"
	hunks := []Hunk{
		{SourceStart: 1, SourceLines: 2, TargetStart: 1, TargetLines: 2,
			Lines: []LineEntry{ctx(1, 1, "l1"), del(2, "l2"), add(2, "L2")}},
		{SourceStart: 6, SourceLines: 2, TargetStart: 6, TargetLines: 2,
			Lines: []LineEntry{ctx(6, 6, "l6"), del(7, "l7"), add(7, "L7")}},
	}

	edits, err := Translate(hunks, NewLineIndex(src))
	require.NoError(t, err)
	require.Len(t, edits, 2)
	assert.Less(t, edits[0].StartByte, edits[1].StartByte)
	assert.Equal(t, uint(18), edits[1].StartByte)
}

func TestTranslate_MissingLineNumber(t *testing.T) {
	hunks := []Hunk{{
		SourceStart: 1, SourceLines: 1, TargetStart: 1, TargetLines: 1,
		Lines: []LineEntry{{Kind: LineContext, Text: "a"}},
	}}

	_, err := Translate(hunks, NewLineIndex("a\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingLineNumber)
}

func TestTranslate_LineBeyondSource(t *testing.T) {
	hunks := []Hunk{{
		SourceStart: 9, SourceLines: 1, TargetStart: 9, TargetLines: 1,
		Lines: []LineEntry{del(9, "ghost"), add(9, "spirit")},
	}}

	_, err := Translate(hunks, NewLineIndex("a\nb\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLineIndexExhausted)
}
