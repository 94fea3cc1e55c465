package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
)

// ErrNotGraphStore is returned when a store path holds something other
// than a diff graph database.
var ErrNotGraphStore = errors.New("not a diff graph store")

// StorePath returns the location of the persisted graph for a repository.
func StorePath(repo string) string {
	return filepath.Join(repo, ".diffdiagram", "graph")
}

// Store receives graph data. DiffGraph is the in-memory implementation
// every run builds; KuzuStore persists a finished graph.
type Store interface {
	io.Closer

	// InitSchema runs once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations. A file is added before its nodes, and both
	// endpoints of an edge are added before the edge.
	AddFile(ctx context.Context, file FileNode) error
	AddNode(ctx context.Context, node Node) error
	AddEdge(ctx context.Context, edge Edge) error

	// Stats.
	Stats(ctx context.Context) (*GraphStats, error)
}

// CopyTo replays g into dst in insertion order.
func CopyTo(ctx context.Context, g *DiffGraph, dst Store) error {
	if err := dst.InitSchema(ctx); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	files := g.Files()
	nodes := g.Nodes()
	edges := g.Edges()

	next := 0
	for _, f := range files {
		if err := dst.AddFile(ctx, f); err != nil {
			return fmt.Errorf("add file %s: %w", f.SourcePath, err)
		}
		for next < len(nodes) && nodes[next].File == f.Index {
			if err := dst.AddNode(ctx, nodes[next]); err != nil {
				return fmt.Errorf("add node %d: %w", nodes[next].ID, err)
			}
			next++
		}
	}
	for _, e := range edges {
		if err := dst.AddEdge(ctx, e); err != nil {
			return fmt.Errorf("add edge %d->%d: %w", e.From.ID, e.To.ID, err)
		}
	}
	return nil
}
