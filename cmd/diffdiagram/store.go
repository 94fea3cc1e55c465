//go:build cgo

package main

import (
	"context"

	"github.com/dusk-indust/diffdiagram/internal/graph"
	"github.com/dusk-indust/diffdiagram/internal/orchestrator"
)

// persistGraph replaces the graph stored in the KuzuDB database at path
// with the run's graph.
func persistGraph(ctx context.Context, res *orchestrator.Result, path string) error {
	store, err := graph.ResetKuzuFileStore(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()
	return graph.CopyTo(ctx, res.Graph, store)
}
