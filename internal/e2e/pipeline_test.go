//go:build e2e

package e2e

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/diffdiagram/internal/diff"
	"github.com/dusk-indust/diffdiagram/internal/export"
	"github.com/dusk-indust/diffdiagram/internal/grammar"
	"github.com/dusk-indust/diffdiagram/internal/graph"
	"github.com/dusk-indust/diffdiagram/internal/orchestrator"
)

// runFixture runs the users fixture through the whole pipeline.
func runFixture(t *testing.T) *orchestrator.Result {
	t.Helper()

	patch, err := os.ReadFile(filepath.Join("..", "..", "testdata", "patches", "user_admin.patch"))
	require.NoError(t, err)
	files, err := diff.ParseUnified(patch)
	require.NoError(t, err)

	reg, err := grammar.Load(grammar.Options{
		ConfigDir:            t.TempDir(),
		SaveDefaultIfMissing: true,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := orchestrator.Run(ctx, orchestrator.Params{
		RepositoryDir: filepath.Join("..", "..", "testdata", "fixtures", "users"),
		Files:         files,
		Registry:      reg,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Close() })
	return res
}

// TestPipeline_E2E runs the fixture diff and checks the graph shape and the
// edits against the patch.
func TestPipeline_E2E(t *testing.T) {
	res := runFixture(t)
	g := res.Graph

	files := g.Files()
	require.Len(t, files, 2)
	assert.Equal(t, g.NodeCount()-len(files), g.EdgeCount())

	model := res.Diffs[0]
	require.Len(t, model.Edits, 2)

	// "\tEmail string" becomes "\tMail  string" on line 7.
	changed := model.Edits[0]
	assert.Equal(t, uint(7), changed.StartPosition.Row)
	assert.Equal(t, changed.StartByte+13, changed.OldEndByte)
	assert.Equal(t, changed.StartByte+13, changed.NewEndByte)
	assert.Equal(t, "\tEmail string", model.Source[changed.StartByte:changed.OldEndByte])

	// "\tAdmin bool" is inserted after it, at the start of line 8.
	inserted := model.Edits[1]
	assert.Equal(t, inserted.StartByte, inserted.OldEndByte)
	assert.Equal(t, inserted.StartByte+uint(len("\tAdmin bool")), inserted.NewEndByte)
	assert.True(t, strings.HasPrefix(model.Source[inserted.StartByte:], "}"))

	// The struct touched by the edits is marked changed; the package clause
	// before it is not.
	var structChanged, clauseChanged bool
	for _, n := range g.Nodes() {
		if n.File != 0 {
			continue
		}
		switch n.Kind {
		case "field_declaration_list":
			structChanged = structChanged || n.Changed
		case "package_clause":
			clauseChanged = n.Changed
		}
	}
	assert.True(t, structChanged)
	assert.False(t, clauseChanged)

	kinds := map[graph.EdgeKind]int{}
	for _, e := range g.Edges() {
		kinds[e.Kind]++
	}
	assert.Positive(t, kinds[graph.EdgeDescend])
	assert.Positive(t, kinds[graph.EdgeSibling])
	assert.Positive(t, kinds[graph.EdgeAscend])
}

// TestPipeline_E2E_Exports checks that the exports agree with the graph.
func TestPipeline_E2E_Exports(t *testing.T) {
	res := runFixture(t)

	mermaid := export.GenerateMermaid(res.Graph)
	assert.Equal(t, res.Graph.EdgeCount(), strings.Count(mermaid, "\n  N"))

	out := export.BuildExport(res.Graph, res.Diffs)
	assert.Equal(t, res.Graph.NodeCount(), out.Stats.NodeCount)
	assert.Len(t, out.Files[0].Edits, 2)
	assert.Len(t, out.Files[1].Edits, 1)
}
