package mcptools

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/diffdiagram/internal/diff"
	"github.com/dusk-indust/diffdiagram/internal/export"
	"github.com/dusk-indust/diffdiagram/internal/grammar"
	"github.com/dusk-indust/diffdiagram/internal/graph"
	"github.com/dusk-indust/diffdiagram/internal/orchestrator"
	"github.com/dusk-indust/diffdiagram/internal/vcs"
)

// DiffGraphService holds the grammar registry used by MCP tool handlers.
// The registry is not safe for concurrent use, so tool calls are
// serialized.
type DiffGraphService struct {
	mu       sync.Mutex
	registry *grammar.Registry
	git      vcs.Git
	timeout  time.Duration
}

// NewDiffGraphService creates a DiffGraphService. timeout is the default
// parse timeout; zero means syntax.DefaultTimeout.
func NewDiffGraphService(registry *grammar.Registry, git vcs.Git, timeout time.Duration) *DiffGraphService {
	return &DiffGraphService{registry: registry, git: git, timeout: timeout}
}

// BuildDiffGraph runs the diff through the pipeline and summarizes the
// resulting graph.
func (s *DiffGraphService) BuildDiffGraph(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BuildDiffGraphInput,
) (*mcp.CallToolResult, BuildDiffGraphOutput, error) {
	if input.RepoPath == "" {
		return nil, BuildDiffGraphOutput{}, fmt.Errorf("repoPath is required")
	}
	info, err := os.Stat(input.RepoPath)
	if err != nil {
		return nil, BuildDiffGraphOutput{}, fmt.Errorf("cannot access repoPath: %w", err)
	}
	if !info.IsDir() {
		return nil, BuildDiffGraphOutput{}, fmt.Errorf("repoPath is not a directory: %s", input.RepoPath)
	}
	if input.TimeoutMicros < 0 {
		return nil, BuildDiffGraphOutput{}, fmt.Errorf("timeoutMicros must not be negative")
	}

	patch, err := s.patchText(ctx, input)
	if err != nil {
		return nil, BuildDiffGraphOutput{}, err
	}
	files, err := diff.ParseUnified(patch)
	if err != nil {
		return nil, BuildDiffGraphOutput{}, err
	}

	timeout := s.timeout
	if input.TimeoutMicros > 0 {
		timeout = time.Duration(input.TimeoutMicros) * time.Microsecond
	}

	s.mu.Lock()
	res, err := orchestrator.Run(ctx, orchestrator.Params{
		RepositoryDir: input.RepoPath,
		Files:         files,
		Registry:      s.registry,
		Timeout:       timeout,
	})
	s.mu.Unlock()
	if err != nil {
		return nil, BuildDiffGraphOutput{}, err
	}
	defer res.Close()

	stats, err := res.Graph.Stats(ctx)
	if err != nil {
		return nil, BuildDiffGraphOutput{}, fmt.Errorf("stats: %w", err)
	}

	out := BuildDiffGraphOutput{
		Stats: *stats,
		Files: summarize(res.Graph),
	}
	if input.Mermaid {
		out.Mermaid = export.GenerateMermaid(res.Graph)
	}

	if input.Persist {
		path := graph.StorePath(input.RepoPath)
		s.mu.Lock()
		err := persistGraph(ctx, res.Graph, path)
		s.mu.Unlock()
		if err != nil {
			return nil, BuildDiffGraphOutput{}, fmt.Errorf("persist graph: %w", err)
		}
		out.GraphStore = path
	}

	return nil, out, nil
}

// patchText returns the unified diff named by input: the inline patch, or
// the git diff of a revision range.
func (s *DiffGraphService) patchText(ctx context.Context, input BuildDiffGraphInput) ([]byte, error) {
	switch {
	case input.Patch != "" && input.Revisions != "":
		return nil, fmt.Errorf("patch and revisions are mutually exclusive")
	case input.Patch != "":
		return []byte(input.Patch), nil
	case input.Revisions != "":
		from, to, ok := vcs.ParseRevisions(input.Revisions)
		if !ok {
			return nil, fmt.Errorf("invalid revisions %q: want from..to or a single revision", input.Revisions)
		}
		return s.git.DiffRange(ctx, input.RepoPath, from, to)
	default:
		return nil, fmt.Errorf("one of patch or revisions is required")
	}
}

func summarize(g *graph.DiffGraph) []FileSummary {
	files := g.Files()
	out := make([]FileSummary, len(files))
	for i, f := range files {
		out[i] = FileSummary{
			SourcePath: f.SourcePath,
			TargetPath: f.TargetPath,
			Language:   f.Language,
			Edits:      f.EditCount,
		}
	}
	for _, n := range g.Nodes() {
		out[n.File].Nodes++
		if n.Changed {
			out[n.File].ChangedNodes++
		}
	}
	return out
}

// persistGraph copies the graph to the KuzuDB at persistPath, replacing the
// graph stored there.
func persistGraph(ctx context.Context, g *graph.DiffGraph, persistPath string) error {
	dst, err := graph.ResetKuzuFileStore(ctx, persistPath)
	if err != nil {
		return fmt.Errorf("open file store: %w", err)
	}
	defer dst.Close()

	return graph.CopyTo(ctx, g, dst)
}

// ChangedNodes reads the graph persisted for a repository and lists the
// changed nodes of every file with their traversal successors.
func (s *DiffGraphService) ChangedNodes(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ChangedNodesInput,
) (*mcp.CallToolResult, ChangedNodesOutput, error) {
	if input.RepoPath == "" {
		return nil, ChangedNodesOutput{}, fmt.Errorf("repoPath is required")
	}
	path := graph.StorePath(input.RepoPath)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, ChangedNodesOutput{}, fmt.Errorf("no graph found at %s; call build_diff_graph with persist first", path)
	} else if err != nil {
		return nil, ChangedNodesOutput{}, fmt.Errorf("cannot access graph: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := graph.NewKuzuFileStore(path)
	if err != nil {
		return nil, ChangedNodesOutput{}, fmt.Errorf("open graph: %w", err)
	}
	defer store.Close()

	changes, err := store.Changes(ctx)
	if err != nil {
		return nil, ChangedNodesOutput{}, err
	}
	return nil, ChangedNodesOutput{GraphStore: path, Files: changes}, nil
}

// ListGrammars reports the grammar configuration and discovery state.
func (s *DiffGraphService) ListGrammars(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListGrammarsInput,
) (*mcp.CallToolResult, ListGrammarsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	missing, err := s.registry.Missing()
	if err != nil {
		return nil, ListGrammarsOutput{}, err
	}

	out := ListGrammarsOutput{
		ConfigDir:   s.registry.ConfigDir(),
		SearchPaths: s.registry.ConfiguredSearchPaths(),
		Grammars:    []GrammarInfo{},
		Missing:     make([]string, 0, len(missing)),
	}
	if out.SearchPaths == nil {
		out.SearchPaths = []string{}
	}
	for _, g := range s.registry.Grammars() {
		out.Grammars = append(out.Grammars, GrammarInfo{
			Name:      g.Name,
			Scope:     g.Scope,
			FileTypes: g.FileTypes,
			Dir:       g.Dir,
		})
	}
	for _, d := range missing {
		out.Missing = append(out.Missing, d.URL)
	}
	return nil, out, nil
}
