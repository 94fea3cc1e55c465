package mcptools

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds how long in-flight tool calls may run once the
// server is asked to stop.
const ShutdownTimeout = 10 * time.Second

// version is set by the linker at build time.
var version = "dev"

// NewDiffGraphMCPServer creates an MCP server with the diff graph tools registered.
func NewDiffGraphMCPServer(svc *DiffGraphService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "diffdiagram",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "build_diff_graph",
		Description: "Apply a unified diff (or a git revision range) to the repository's syntax trees and fold the edited trees into a traversal graph. Returns node and edge counts per file, optionally a Mermaid diagram.",
	}, svc.BuildDiffGraph)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "changed_nodes",
		Description: "Read the graph persisted by build_diff_graph (persist: true) for a repository. Lists each file's changed nodes and the node each one leads to in traversal order.",
	}, svc.ChangedNodes)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_grammars",
		Description: "List the tree-sitter grammar configuration: search paths, grammars discovered on them, and catalog entries not yet installed.",
	}, svc.ListGrammars)

	return server
}

// RunMCPServer serves the diff graph MCP tools over streamable HTTP until
// ctx is done, then shuts down within ShutdownTimeout. A listen failure is
// returned immediately.
func RunMCPServer(ctx context.Context, svc *DiffGraphService, addr string) error {
	server := NewDiffGraphMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(sctx)
	})
	return g.Wait()
}
