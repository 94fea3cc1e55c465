package graph

import (
	"context"
	"fmt"

	"github.com/dusk-indust/diffdiagram/internal/diff"
)

// Compile-time assertion: *DiffGraph satisfies Store.
var _ Store = (*DiffGraph)(nil)

// DiffGraph accumulates the traversal graphs of every file in a run along
// with the per-file diffs. It is append-only and not safe for concurrent
// use.
type DiffGraph struct {
	files []FileNode
	nodes []Node // indexed by NodeID
	edges []Edge
	diffs []*diff.Diff
}

// NewDiffGraph returns an empty graph.
func NewDiffGraph() *DiffGraph {
	return &DiffGraph{}
}

// InitSchema is a no-op for the in-memory graph.
func (g *DiffGraph) InitSchema(_ context.Context) error {
	return nil
}

// AddFile appends a file.
func (g *DiffGraph) AddFile(_ context.Context, file FileNode) error {
	if file.Index != len(g.files) {
		return fmt.Errorf("file index %d out of order, expected %d", file.Index, len(g.files))
	}
	g.files = append(g.files, file)
	return nil
}

// AddNode appends a node. Its ID must be the next arena slot.
func (g *DiffGraph) AddNode(_ context.Context, node Node) error {
	if int(node.ID) != len(g.nodes) {
		return fmt.Errorf("node id %d out of order, expected %d", node.ID, len(g.nodes))
	}
	g.nodes = append(g.nodes, node)
	return nil
}

// AddEdge appends an edge between two known nodes.
func (g *DiffGraph) AddEdge(_ context.Context, edge Edge) error {
	if !g.has(edge.From.ID) || !g.has(edge.To.ID) {
		return fmt.Errorf("edge %d->%d references an unknown node", edge.From.ID, edge.To.ID)
	}
	g.edges = append(g.edges, edge)
	return nil
}

// AddDiff records a processed file diff.
func (g *DiffGraph) AddDiff(d *diff.Diff) {
	g.diffs = append(g.diffs, d)
}

func (g *DiffGraph) has(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

// Node returns the node with the given ID.
func (g *DiffGraph) Node(id NodeID) (Node, bool) {
	if !g.has(id) {
		return Node{}, false
	}
	return g.nodes[id], true
}

// Files returns a copy of the folded files.
func (g *DiffGraph) Files() []FileNode {
	out := make([]FileNode, len(g.files))
	copy(out, g.files)
	return out
}

// Nodes returns a copy of all nodes in ID order.
func (g *DiffGraph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns a copy of all edges in insertion order.
func (g *DiffGraph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Diffs returns the recorded diffs.
func (g *DiffGraph) Diffs() []*diff.Diff {
	out := make([]*diff.Diff, len(g.diffs))
	copy(out, g.diffs)
	return out
}

// NodeCount returns the number of nodes.
func (g *DiffGraph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *DiffGraph) EdgeCount() int { return len(g.edges) }

// Stats returns file, node and edge counts.
func (g *DiffGraph) Stats(_ context.Context) (*GraphStats, error) {
	return &GraphStats{
		FileCount: len(g.files),
		NodeCount: len(g.nodes),
		EdgeCount: len(g.edges),
	}, nil
}

// Close releases the syntax trees held by the recorded diffs. Graph data
// remains readable.
func (g *DiffGraph) Close() error {
	for _, d := range g.diffs {
		d.Close()
	}
	return nil
}
