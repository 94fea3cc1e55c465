package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/diffdiagram/internal/mcptools"
	"github.com/dusk-indust/diffdiagram/internal/vcs"
)

var serveMCPCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Serve the diff graph tools over MCP (streamable HTTP)",
	Args:  cobra.NoArgs,
	RunE:  runServeMCP,
}

func init() {
	serveMCPCmd.Flags().String("addr", ":8080", "listen address")
	serveMCPCmd.Flags().Int64("timeout", 0, "default per-file parse timeout in microseconds")
}

func runServeMCP(cmd *cobra.Command, _ []string) error {
	cfg := projectConfig()
	reg, err := loadRegistry(cmd, cfg)
	if err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("addr")
	micros, _ := cmd.Flags().GetInt64("timeout")
	timeout := time.Duration(micros) * time.Microsecond
	if !cmd.Flags().Changed("timeout") && cfg != nil {
		timeout = cfg.ParseTimeout()
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := mcptools.NewDiffGraphService(reg, vcs.Git{}, timeout)

	if !quiet(cmd) {
		headingColor.Fprintf(cmd.ErrOrStderr(), "serving MCP on %s\n", addr)
	}

	return mcptools.RunMCPServer(ctx, svc, addr)
}
