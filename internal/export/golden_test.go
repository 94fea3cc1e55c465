package export

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/diffdiagram/internal/diff"
	"github.com/dusk-indust/diffdiagram/internal/graph"
)

var update = flag.Bool("update", false, "update golden files")

// goldenGraph folds "package p" -> "package q" in util.go and an unchanged
// main.go, covering every edge kind and an escaped label.
func goldenGraph(t *testing.T) (*graph.DiffGraph, []*diff.Diff) {
	t.Helper()
	ctx := context.Background()
	g := graph.NewDiffGraph()

	add := func(file graph.FileNode, nodes []graph.Node, kinds []graph.EdgeKind) {
		require.NoError(t, g.AddFile(ctx, file))
		for _, n := range nodes {
			require.NoError(t, g.AddNode(ctx, n))
		}
		for i, k := range kinds {
			require.NoError(t, g.AddEdge(ctx, graph.Edge{From: nodes[i], To: nodes[i+1], Kind: k}))
		}
	}

	add(graph.FileNode{Index: 0, SourcePath: "a/pkg/util/util.go", TargetPath: "b/pkg/util/util.go", Language: "go", EditCount: 1, Root: 0},
		[]graph.Node{
			{ID: 0, File: 0, KindID: 1, Kind: "source_file", Named: true, EndByte: 10, EndRow: 1, Changed: true},
			{ID: 1, File: 0, KindID: 2, Kind: "package_clause", Named: true, EndByte: 9, Changed: true},
			{ID: 2, File: 0, KindID: 3, Kind: "package", EndByte: 7},
			{ID: 3, File: 0, KindID: 4, Kind: "package_identifier", Named: true, StartByte: 8, EndByte: 9, Changed: true},
		},
		[]graph.EdgeKind{graph.EdgeDescend, graph.EdgeDescend, graph.EdgeSibling})

	add(graph.FileNode{Index: 1, SourcePath: "a/main.go", TargetPath: "b/main.go", Language: "go", Root: 4},
		[]graph.Node{
			{ID: 4, File: 1, KindID: 1, Kind: "source_file", Named: true, EndByte: 13, EndRow: 1},
			{ID: 5, File: 1, KindID: 2, Kind: "package_clause", Named: true, EndByte: 12},
			{ID: 6, File: 1, KindID: 3, Kind: "package", EndByte: 7},
			{ID: 7, File: 1, KindID: 4, Kind: "package_identifier", Named: true, StartByte: 8, EndByte: 12},
			{ID: 8, File: 1, KindID: 5, Kind: "\n", StartByte: 12, EndByte: 13, EndRow: 1},
		},
		[]graph.EdgeKind{graph.EdgeDescend, graph.EdgeDescend, graph.EdgeSibling, graph.EdgeAscend})

	diffs := []*diff.Diff{
		{SourcePath: "a/pkg/util/util.go", Edits: []diff.Edit{{
			StartByte: 0, OldEndByte: 9, NewEndByte: 9,
			StartPosition:  diff.Point{Row: 1},
			OldEndPosition: diff.Point{Row: 1, Column: 9},
			NewEndPosition: diff.Point{Row: 1, Column: 9},
		}}},
		{SourcePath: "a/main.go"},
	}
	return g, diffs
}

func renderGolden(t *testing.T) map[string][]byte {
	t.Helper()
	g, diffs := goldenGraph(t)

	data, err := GenerateJSON(g, diffs)
	require.NoError(t, err)

	return map[string][]byte{
		"graph.json": append(data, '\n'),
		"graph.mmd":  []byte(GenerateMermaid(g)),
	}
}

// TestGolden compares the exports against testdata/golden. Regenerate with
// go test ./internal/export/ -run TestGolden -update.
func TestGolden(t *testing.T) {
	dir := filepath.Join("testdata", "golden")
	for name, actual := range renderGolden(t) {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if *update {
				require.NoError(t, os.WriteFile(path, actual, 0o644))
				return
			}
			golden, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, string(golden), string(actual), "output for %s does not match golden file", name)
		})
	}
}
