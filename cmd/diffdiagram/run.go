package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/diffdiagram/internal/config"
	"github.com/dusk-indust/diffdiagram/internal/diff"
	"github.com/dusk-indust/diffdiagram/internal/export"
	"github.com/dusk-indust/diffdiagram/internal/orchestrator"
	"github.com/dusk-indust/diffdiagram/internal/vcs"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build the diff graph for a repository and a diff",
	Long: `Build the diff graph for a repository and a diff.

--repository is a local checkout or a git URL, which is cloned first.
--diff is a patch file, "-" for standard input, a revision range <from>..<to>,
or a single revision meaning HEAD..<rev>. Patch files must apply cleanly to
the repository.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	addRunFlags(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("repository", "", "repository checkout or git URL")
	f.String("clone-path", "", "where to clone a remote repository (default: its name in the working directory)")
	f.String("diff", "", "patch file, '-' for stdin, or a revision range")
	f.Bool("install-missing", false, "clone missing catalog grammars before parsing")
	f.Int64("timeout", 0, "per-file parse timeout in microseconds (default 1000000)")
	f.String("format", "summary", "output format (summary|json|mermaid)")
	f.String("graph-store", "", "persist the graph into a KuzuDB database at this path")
	_ = cmd.MarkFlagRequired("repository")
	_ = cmd.MarkFlagRequired("diff")
}

// runOptions are the merged flag and project config values of one run.
type runOptions struct {
	Repository     string
	ClonePath      string
	Diff           string
	InstallMissing bool
	Timeout        time.Duration
	Format         string
	GraphStore     string
}

func runRun(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	git := vcs.Git{}

	f := cmd.Flags()
	opts := runOptions{}
	opts.Repository, _ = f.GetString("repository")
	opts.ClonePath, _ = f.GetString("clone-path")
	opts.Diff, _ = f.GetString("diff")

	repo, err := resolveRepository(ctx, git, opts.Repository, opts.ClonePath)
	if err != nil {
		return err
	}

	cfg, err := config.Load(repo)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := mergeRunOptions(cmd, cfg, &opts); err != nil {
		return err
	}

	registry, err := loadRegistry(cmd, cfg)
	if err != nil {
		return err
	}

	patch, err := readPatch(ctx, git, repo, opts.Diff, cmd.InOrStdin())
	if err != nil {
		return err
	}
	files, err := diff.ParseUnified(patch)
	if err != nil {
		return err
	}

	progress := cmd.ErrOrStderr()
	params := orchestrator.Params{
		RepositoryDir:  repo,
		Files:          files,
		Registry:       registry,
		Timeout:        opts.Timeout,
		InstallMissing: opts.InstallMissing,
	}
	if !quiet(cmd) {
		params.OnProgress = func(ev orchestrator.ProgressEvent) {
			if ev.Status == orchestrator.ProgressFailed {
				errorColor.Fprintln(progress, orchestrator.FormatProgress(ev))
				return
			}
			dimColor.Fprintln(progress, orchestrator.FormatProgress(ev))
		}
	}

	res, err := orchestrator.Run(ctx, params)
	if err != nil {
		return err
	}
	defer res.Close()

	if opts.GraphStore != "" {
		if err := persistGraph(ctx, res, opts.GraphStore); err != nil {
			return fmt.Errorf("graph store: %w", err)
		}
	}

	return writeResult(cmd.OutOrStdout(), opts.Format, res)
}

// mergeRunOptions fills opts from flags, falling back to the project config
// for flags the user did not set.
func mergeRunOptions(cmd *cobra.Command, cfg *config.ProjectConfig, opts *runOptions) error {
	f := cmd.Flags()

	opts.InstallMissing, _ = f.GetBool("install-missing")
	if !f.Changed("install-missing") {
		opts.InstallMissing = cfg.InstallMissing
	}

	micros, _ := f.GetInt64("timeout")
	if micros < 0 {
		return fmt.Errorf("--timeout must not be negative")
	}
	opts.Timeout = time.Duration(micros) * time.Microsecond
	if !f.Changed("timeout") {
		opts.Timeout = cfg.ParseTimeout()
	}

	opts.Format, _ = f.GetString("format")
	if !f.Changed("format") && cfg.Format != "" {
		opts.Format = cfg.Format
	}
	switch opts.Format {
	case "summary", "json", "mermaid":
	default:
		return fmt.Errorf("invalid format %q: want summary, json or mermaid", opts.Format)
	}

	opts.GraphStore, _ = f.GetString("graph-store")
	if !f.Changed("graph-store") {
		opts.GraphStore = cfg.GraphStore
	}
	return nil
}

// resolveRepository returns a local checkout for arg, cloning it first when
// it is a URL. An existing work tree at the clone path is reused.
func resolveRepository(ctx context.Context, git vcs.Git, arg, clonePath string) (string, error) {
	if !vcs.IsRemote(arg) {
		info, err := os.Stat(arg)
		if err != nil {
			return "", fmt.Errorf("repository: %w", err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("repository %s is not a directory", arg)
		}
		return arg, nil
	}

	if clonePath == "" {
		clonePath = vcs.CloneDirName(arg)
	}
	if git.IsWorkTree(ctx, clonePath) {
		return clonePath, nil
	}
	if err := git.Clone(ctx, arg, clonePath); err != nil {
		return "", fmt.Errorf("clone %s: %w", arg, err)
	}
	return clonePath, nil
}

// readPatch loads the unified diff named by arg.
func readPatch(ctx context.Context, git vcs.Git, repo, arg string, stdin io.Reader) ([]byte, error) {
	if arg == "-" {
		return io.ReadAll(stdin)
	}

	if info, err := os.Stat(arg); err == nil && info.Mode().IsRegular() {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		ok, err := git.CheckApply(ctx, repo, abs)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("patch %s does not apply to %s", arg, repo)
		}
		return os.ReadFile(abs)
	}

	if from, to, ok := vcs.ParseRevisions(arg); ok {
		return git.DiffRange(ctx, repo, from, to)
	}
	return nil, fmt.Errorf("diff %q: %w", arg, errNoDiff)
}

var errNoDiff = errors.New("not a patch file or revision range")

func writeResult(w io.Writer, format string, res *orchestrator.Result) error {
	switch format {
	case "json":
		data, err := export.GenerateJSON(res.Graph, res.Diffs)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "mermaid":
		_, err := fmt.Fprint(w, export.GenerateMermaid(res.Graph))
		return err
	default:
		return writeSummary(w, res)
	}
}

func writeSummary(w io.Writer, res *orchestrator.Result) error {
	nodes := make(map[int]int)
	changed := make(map[int]int)
	for _, n := range res.Graph.Nodes() {
		nodes[n.File]++
		if n.Changed {
			changed[n.File]++
		}
	}

	files := res.Graph.Files()
	headingColor.Fprintf(w, "%d files, %d nodes, %d edges\n", len(files), res.Graph.NodeCount(), res.Graph.EdgeCount())
	for _, f := range files {
		fmt.Fprintf(w, "  %s (%s): %d edits, %d nodes, %d changed\n",
			diff.StripPathPrefix(f.SourcePath), f.Language, f.EditCount, nodes[f.Index], changed[f.Index])
	}
	return nil
}
