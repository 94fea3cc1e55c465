package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/diffdiagram/internal/config"
)

var grammarsCmd = &cobra.Command{
	Use:   "grammars",
	Short: "Inspect and install tree-sitter grammars",
}

var grammarsPathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Print the configured grammar search paths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := loadRegistry(cmd, projectConfig())
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		for _, p := range reg.ConfiguredSearchPaths() {
			fmt.Fprintln(w, p)
		}
		return nil
	},
}

var grammarsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered grammars and catalog entries that are not installed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := loadRegistry(cmd, projectConfig())
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()

		headingColor.Fprintf(w, "Grammars (%s)\n", reg.ConfigDir())
		grammars := reg.Grammars()
		if len(grammars) == 0 {
			dimColor.Fprintln(w, "  none discovered")
		}
		for _, g := range grammars {
			fmt.Fprintf(w, "  %-16s %s  [%s]\n", g.Name, g.Dir, strings.Join(g.FileTypes, ", "))
		}

		missing, err := reg.Missing()
		if err != nil {
			return err
		}
		headingColor.Fprintf(w, "Missing (%d)\n", len(missing))
		for _, d := range missing {
			fmt.Fprintf(w, "  %s\n", d.URL)
		}
		return nil
	},
}

var grammarsInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Clone every catalog grammar that is not installed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := loadRegistry(cmd, projectConfig())
		if err != nil {
			return err
		}
		missing, err := reg.Missing()
		if err != nil {
			return err
		}
		if !quiet(cmd) {
			dimColor.Fprintf(cmd.ErrOrStderr(), "installing %d grammars into %s\n", len(missing), reg.ParsersDir())
		}
		if err := reg.InstallMissing(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d grammars installed\n", len(missing))
		return nil
	},
}

func init() {
	grammarsCmd.AddCommand(grammarsPathsCmd)
	grammarsCmd.AddCommand(grammarsListCmd)
	grammarsCmd.AddCommand(grammarsInstallCmd)
}

// projectConfig reads diffdiagram.yml from the working directory, or
// returns nil when there is none or it cannot be read.
func projectConfig() *config.ProjectConfig {
	wd, err := os.Getwd()
	if err != nil {
		return nil
	}
	cfg, err := config.Load(wd)
	if err != nil {
		return nil
	}
	return cfg
}
