//go:build cgo

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/diffdiagram/internal/diff"
	"github.com/dusk-indust/diffdiagram/internal/graph"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List the changed nodes of a persisted graph",
	Long: `inspect reads a graph written by "run --graph-store" and prints, per file,
every node touched by an edit and the node its traversal edge leads to.`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().String("graph-store", "", "KuzuDB database to read (default: graphStore from diffdiagram.yml, else <repository>/.diffdiagram/graph)")
	inspectCmd.Flags().String("repository", ".", "repository whose default graph store to read")
	inspectCmd.Flags().String("format", "summary", "output format (summary|json)")
}

func runInspect(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "summary" && format != "json" {
		return fmt.Errorf("invalid format %q: want summary or json", format)
	}

	path, _ := cmd.Flags().GetString("graph-store")
	if path == "" {
		if cfg := projectConfig(); cfg != nil && cfg.GraphStore != "" {
			path = cfg.GraphStore
		} else {
			repo, _ := cmd.Flags().GetString("repository")
			path = graph.StorePath(repo)
		}
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("no graph found at %s; run with --graph-store first", path)
	} else if err != nil {
		return err
	}

	store, err := graph.NewKuzuFileStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	changes, err := store.Changes(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if format == "json" {
		data, err := json.MarshalIndent(changes, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal changes: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	writeChanges(w, changes)
	return nil
}

func writeChanges(w io.Writer, changes []graph.FileChanges) {
	for _, fc := range changes {
		headingColor.Fprintf(w, "%s (%s): %d changed\n",
			diff.StripPathPrefix(fc.File.SourcePath), fc.File.Language, len(fc.Changed))
		for _, c := range fc.Changed {
			fmt.Fprintf(w, "  %s %d..%d", c.Kind, c.StartByte, c.EndByte)
			if c.Next == nil {
				dimColor.Fprintln(w, " (last)")
				continue
			}
			dimColor.Fprintf(w, " %s ", c.NextKind)
			fmt.Fprintf(w, "%s %d..%d\n", c.Next.Kind, c.Next.StartByte, c.Next.EndByte)
		}
	}
}
