package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// version is set by goreleaser at build time.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "diffdiagram",
	Short: "Fold a diff's edits into tree-sitter syntax trees and graph the result",
	Long: `diffdiagram reads a unified diff, translates every hunk into byte-level
edits against the original source, parses each file with tree-sitter, applies
the edits to the tree and folds the edited trees into one traversal graph.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupColor,
}

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	headingColor = color.New(color.FgCyan, color.Bold)
	dimColor     = color.New(color.Faint)
)

func init() {
	rootCmd.Version = version

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(grammarsCmd)
	rootCmd.AddCommand(serveMCPCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress progress output")
	rootCmd.PersistentFlags().String("grammar-dir", "", "tree-sitter configuration directory (default: user config dir/tree-sitter)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		errorColor.Fprint(os.Stderr, "error: ")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupColor(cmd *cobra.Command, _ []string) error {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return err
	}
	switch mode {
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color %q: want auto, on or off", mode)
	}
	return nil
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func quiet(cmd *cobra.Command) bool {
	q, _ := cmd.Flags().GetBool("quiet")
	return q
}
