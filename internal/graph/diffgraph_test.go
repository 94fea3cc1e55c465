package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/diffdiagram/internal/diff"
)

func TestDiffGraph_OrderChecks(t *testing.T) {
	ctx := context.Background()
	g := NewDiffGraph()

	require.Error(t, g.AddFile(ctx, FileNode{Index: 1}))
	require.NoError(t, g.AddFile(ctx, FileNode{Index: 0}))

	require.Error(t, g.AddNode(ctx, Node{ID: 3}))
	require.NoError(t, g.AddNode(ctx, Node{ID: 0}))
	require.NoError(t, g.AddNode(ctx, Node{ID: 1}))

	require.Error(t, g.AddEdge(ctx, Edge{From: Node{ID: 0}, To: Node{ID: 9}}))
	require.NoError(t, g.AddEdge(ctx, Edge{From: Node{ID: 0}, To: Node{ID: 1}, Kind: EdgeDescend}))

	_, ok := g.Node(-1)
	assert.False(t, ok)
	_, ok = g.Node(2)
	assert.False(t, ok)

	stats, err := g.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, GraphStats{FileCount: 1, NodeCount: 2, EdgeCount: 1}, *stats)
}

func TestDiffGraph_AccessorsCopy(t *testing.T) {
	ctx := context.Background()
	g := NewDiffGraph()
	require.NoError(t, g.AddFile(ctx, FileNode{Index: 0, SourcePath: "a/x.go"}))
	require.NoError(t, g.AddNode(ctx, Node{ID: 0, Kind: "source_file"}))

	nodes := g.Nodes()
	nodes[0].Kind = "mutated"
	n, _ := g.Node(0)
	assert.Equal(t, "source_file", n.Kind)

	files := g.Files()
	files[0].SourcePath = "mutated"
	assert.Equal(t, "a/x.go", g.Files()[0].SourcePath)
}

func TestDiffGraph_CloseReleasesTrees(t *testing.T) {
	tree := parseGo(t, "package main\n")
	d := &diff.Diff{SourcePath: "a/main.go", Tree: tree.Clone()}

	g := NewDiffGraph()
	g.AddDiff(d)
	require.Len(t, g.Diffs(), 1)
	require.NoError(t, g.Close())
	assert.Nil(t, d.Tree)
}

// recordingStore captures the call order seen by CopyTo.
type recordingStore struct {
	calls []string
	DiffGraph
}

func (r *recordingStore) InitSchema(ctx context.Context) error {
	r.calls = append(r.calls, "schema")
	return nil
}

func (r *recordingStore) AddFile(ctx context.Context, f FileNode) error {
	r.calls = append(r.calls, "file")
	return r.DiffGraph.AddFile(ctx, f)
}

func (r *recordingStore) AddNode(ctx context.Context, n Node) error {
	r.calls = append(r.calls, "node")
	return r.DiffGraph.AddNode(ctx, n)
}

func (r *recordingStore) AddEdge(ctx context.Context, e Edge) error {
	r.calls = append(r.calls, "edge")
	return r.DiffGraph.AddEdge(ctx, e)
}

func TestCopyTo(t *testing.T) {
	ctx := context.Background()
	g := NewDiffGraph()
	b := NewBuilder(g)
	_, err := b.Fold(ctx, FileNode{SourcePath: "a/a.go"}, parseGo(t, "package a\n"))
	require.NoError(t, err)
	_, err = b.Fold(ctx, FileNode{SourcePath: "a/b.go"}, parseGo(t, "package b\n"))
	require.NoError(t, err)

	dst := &recordingStore{}
	require.NoError(t, CopyTo(ctx, g, dst))

	assert.Equal(t, "schema", dst.calls[0])
	assert.Equal(t, "file", dst.calls[1])
	assert.Equal(t, g.Nodes(), dst.Nodes())
	assert.Equal(t, g.Edges(), dst.Edges())
	assert.Equal(t, g.Files(), dst.Files())

	// Every node is preceded by its file and every edge comes last.
	firstEdge := len(dst.calls) - g.EdgeCount()
	for _, c := range dst.calls[firstEdge:] {
		assert.Equal(t, "edge", c)
	}
}
