package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/dusk-indust/diffdiagram/internal/diff"
	"github.com/dusk-indust/diffdiagram/internal/grammar"
	"github.com/dusk-indust/diffdiagram/internal/graph"
	"github.com/dusk-indust/diffdiagram/internal/syntax"
)

// Params configures a single run.
type Params struct {
	// RepositoryDir is the checkout the diff's source paths are relative to.
	RepositoryDir string

	// Files are the parsed per-file diffs, processed in order.
	Files []diff.FileDiff

	// Registry resolves a language for each source path.
	Registry *grammar.Registry

	// Timeout bounds each parse. Zero means syntax.DefaultTimeout.
	Timeout time.Duration

	// InstallMissing clones missing catalog grammars before any parsing.
	InstallMissing bool

	// OnProgress is called synchronously for every progress event; it may
	// be nil.
	OnProgress func(ProgressEvent)
}

// Result is the outcome of a successful run. It owns the syntax trees of
// its diffs; call Close to release them.
type Result struct {
	Graph *graph.DiffGraph
	Diffs []*diff.Diff
}

// Close releases every syntax tree held by the result.
func (r *Result) Close() error {
	if r == nil || r.Graph == nil {
		return nil
	}
	return r.Graph.Close()
}

// Run processes every file diff of p in order: load and translate, resolve
// a language, parse, apply edits and fold the edited tree into one graph.
// The first failure aborts the run and no partial result is returned.
func Run(ctx context.Context, p Params) (*Result, error) {
	if p.Registry == nil {
		return nil, fmt.Errorf("run: no grammar registry")
	}

	if p.InstallMissing {
		emit(p.OnProgress, ProgressEvent{Stage: StageInstall, Status: ProgressWorking})
		if err := p.Registry.InstallMissing(ctx); err != nil {
			emit(p.OnProgress, ProgressEvent{Stage: StageInstall, Status: ProgressFailed, Message: err.Error()})
			return nil, err
		}
		emit(p.OnProgress, ProgressEvent{Stage: StageInstall, Status: ProgressComplete})
	}

	g := graph.NewDiffGraph()
	r := &runner{
		params:  p,
		parser:  syntax.NewParser(p.Timeout),
		graph:   g,
		builder: graph.NewBuilder(g),
	}

	for _, fd := range p.Files {
		if err := r.process(ctx, fd); err != nil {
			_ = g.Close()
			return nil, err
		}
	}

	return &Result{Graph: g, Diffs: g.Diffs()}, nil
}

type runner struct {
	params  Params
	parser  *syntax.Parser
	graph   *graph.DiffGraph
	builder *graph.Builder
}

// process runs one file through every stage. On success the diff, and the
// tree it owns, belong to the graph.
func (r *runner) process(ctx context.Context, fd diff.FileDiff) (err error) {
	path := fd.SourcePath
	stage := StageLoad
	defer func() {
		if err != nil {
			r.emit(ProgressEvent{Stage: stage, File: path, Status: ProgressFailed, Message: err.Error()})
		}
	}()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	r.emit(ProgressEvent{Stage: stage, File: path, Status: ProgressWorking})
	d, err := diff.Load(r.params.RepositoryDir, fd)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			d.Close()
		}
	}()

	stage = StageResolve
	lang, ok := r.params.Registry.ResolveLanguage(diff.StripPathPrefix(path))
	if !ok {
		return fmt.Errorf("%s: %w", path, grammar.ErrLanguageResolution)
	}
	d.Language = lang.Name

	stage = StageParse
	r.emit(ProgressEvent{Stage: stage, File: path, Status: ProgressWorking, Message: lang.Name})
	tree, err := r.parser.Parse(ctx, lang, []byte(d.Source))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	d.Tree = tree

	stage = StageEdit
	if err := syntax.ApplyEdits(tree, len(d.Source), d.Edits); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	stage = StageFold
	_, err = r.builder.Fold(ctx, graph.FileNode{
		SourcePath: d.SourcePath,
		TargetPath: d.TargetPath,
		Language:   d.Language,
		EditCount:  len(d.Edits),
	}, tree)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	r.graph.AddDiff(d)

	r.emit(ProgressEvent{
		Stage:   stage,
		File:    path,
		Status:  ProgressComplete,
		Message: fmt.Sprintf("%d edits", len(d.Edits)),
	})
	return nil
}

func (r *runner) emit(ev ProgressEvent) {
	emit(r.params.OnProgress, ev)
}

func emit(fn func(ProgressEvent), ev ProgressEvent) {
	if fn != nil {
		fn(ev)
	}
}
