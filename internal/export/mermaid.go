package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dusk-indust/diffdiagram/internal/graph"
)

// edgeArrows maps each traversal edge kind to a Mermaid link style.
var edgeArrows = map[graph.EdgeKind]string{
	graph.EdgeDescend: "-->",
	graph.EdgeSibling: "-.->",
	graph.EdgeAscend:  "==>",
}

// GenerateMermaid produces a Mermaid graph TD diagram of g. Each file is a
// subgraph; nodes touched by an edit get the "changed" class.
func GenerateMermaid(g *graph.DiffGraph) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("  classDef changed fill:#fde2e1,stroke:#c0392b\n")

	nodes := g.Nodes()
	next := 0
	var changed []string
	for _, f := range g.Files() {
		fmt.Fprintf(&sb, "  subgraph F%d[\"%s\"]\n", f.Index, escapeLabel(shortPath(f.SourcePath)))
		for next < len(nodes) && nodes[next].File == f.Index {
			n := nodes[next]
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", nodeID(n.ID), nodeLabel(n))
			if n.Changed {
				changed = append(changed, nodeID(n.ID))
			}
			next++
		}
		sb.WriteString("  end\n")
	}

	for _, e := range g.Edges() {
		arrow, ok := edgeArrows[e.Kind]
		if !ok {
			arrow = "-->"
		}
		fmt.Fprintf(&sb, "  %s %s %s\n", nodeID(e.From.ID), arrow, nodeID(e.To.ID))
	}

	if len(changed) > 0 {
		fmt.Fprintf(&sb, "  class %s changed\n", strings.Join(changed, ","))
	}
	return sb.String()
}

func nodeID(id graph.NodeID) string {
	return fmt.Sprintf("N%d", id)
}

// nodeLabel shows the node kind and its byte range. Anonymous nodes are
// quoted so punctuation tokens stay readable.
func nodeLabel(n graph.Node) string {
	kind := n.Kind
	if !n.Named {
		kind = "'" + kind + "'"
	}
	return fmt.Sprintf("%s %d..%d", escapeLabel(kind), n.StartByte, n.EndByte)
}

var labelEscaper = strings.NewReplacer(
	`"`, "#quot;",
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func escapeLabel(s string) string {
	return labelEscaper.Replace(s)
}

// shortPath returns the last 2 path segments for readability.
func shortPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) <= 2 {
		return path
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
