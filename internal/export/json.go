package export

import (
	"encoding/json"
	"fmt"

	"github.com/dusk-indust/diffdiagram/internal/diff"
	"github.com/dusk-indust/diffdiagram/internal/graph"
)

// GraphExport is the top-level JSON export structure.
type GraphExport struct {
	Stats graph.GraphStats `json:"stats"`
	Files []FileExport     `json:"files"`
	Nodes []graph.Node     `json:"nodes"`
	Edges []EdgeExport     `json:"edges"`
}

// FileExport describes one folded file and the edits applied to it.
type FileExport struct {
	graph.FileNode
	Edits []diff.Edit `json:"edits"`
}

// EdgeExport references nodes by ID instead of embedding them.
type EdgeExport struct {
	From graph.NodeID   `json:"from"`
	To   graph.NodeID   `json:"to"`
	Kind graph.EdgeKind `json:"kind"`
}

// BuildExport assembles the export of g. diffs are matched to files by
// position; a missing diff leaves the file's edits empty.
func BuildExport(g *graph.DiffGraph, diffs []*diff.Diff) *GraphExport {
	out := &GraphExport{
		Stats: graph.GraphStats{
			FileCount: len(g.Files()),
			NodeCount: g.NodeCount(),
			EdgeCount: g.EdgeCount(),
		},
		Files: make([]FileExport, 0, len(g.Files())),
		Nodes: g.Nodes(),
	}

	for i, f := range g.Files() {
		fe := FileExport{FileNode: f, Edits: []diff.Edit{}}
		if i < len(diffs) && diffs[i] != nil {
			fe.Edits = append(fe.Edits, diffs[i].Edits...)
		}
		out.Files = append(out.Files, fe)
	}

	out.Edges = make([]EdgeExport, 0, g.EdgeCount())
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, EdgeExport{From: e.From.ID, To: e.To.ID, Kind: e.Kind})
	}
	return out
}

// GenerateJSON renders g and its diffs as indented JSON.
func GenerateJSON(g *graph.DiffGraph, diffs []*diff.Diff) ([]byte, error) {
	data, err := json.MarshalIndent(BuildExport(g, diffs), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal graph: %w", err)
	}
	return data, nil
}
