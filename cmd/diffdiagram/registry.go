package main

import (
	"github.com/spf13/cobra"

	"github.com/dusk-indust/diffdiagram/internal/config"
	"github.com/dusk-indust/diffdiagram/internal/grammar"
	"github.com/dusk-indust/diffdiagram/internal/vcs"
)

// loadRegistry opens the grammar registry. The directory comes from
// --grammar-dir, then the project config, then the user config directory.
func loadRegistry(cmd *cobra.Command, cfg *config.ProjectConfig) (*grammar.Registry, error) {
	dir, _ := cmd.Flags().GetString("grammar-dir")
	if dir == "" && cfg != nil {
		dir = cfg.GrammarDir
	}
	if dir == "" {
		var err error
		dir, err = grammar.DefaultConfigDir()
		if err != nil {
			return nil, err
		}
	}

	save := true
	if cfg != nil {
		save = cfg.SaveDefaults()
	}
	return grammar.Load(grammar.Options{
		ConfigDir:            dir,
		Catalog:              grammar.DefaultCatalog(),
		SaveDefaultIfMissing: save,
		Cloner:               vcs.Git{},
	})
}
