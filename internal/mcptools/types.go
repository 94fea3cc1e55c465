package mcptools

import "github.com/dusk-indust/diffdiagram/internal/graph"

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// BuildDiffGraphInput is the input for the build_diff_graph MCP tool.
type BuildDiffGraphInput struct {
	RepoPath      string `json:"repoPath" jsonschema:"the absolute path to the repository checkout the diff applies to"`
	Patch         string `json:"patch,omitempty" jsonschema:"unified diff text; paths carry a/ and b/ prefixes"`
	Revisions     string `json:"revisions,omitempty" jsonschema:"instead of patch: a git revision range from..to, or a single revision meaning HEAD..rev"`
	TimeoutMicros int64  `json:"timeoutMicros,omitempty" jsonschema:"per-file parse timeout in microseconds (default: 1000000)"`
	Mermaid       bool   `json:"mermaid,omitempty" jsonschema:"include a Mermaid rendering of the graph"`
	Persist       bool   `json:"persist,omitempty" jsonschema:"persist the graph into the repository's .diffdiagram/graph KuzuDB database"`
}

// BuildDiffGraphOutput is the result of the build_diff_graph MCP tool.
type BuildDiffGraphOutput struct {
	Stats      graph.GraphStats `json:"stats"`
	Files      []FileSummary    `json:"files"`
	Mermaid    string           `json:"mermaid,omitempty"`
	GraphStore string           `json:"graphStore,omitempty"`
}

// FileSummary describes one processed file.
type FileSummary struct {
	SourcePath   string `json:"sourcePath"`
	TargetPath   string `json:"targetPath"`
	Language     string `json:"language"`
	Edits        int    `json:"edits"`
	Nodes        int    `json:"nodes"`
	ChangedNodes int    `json:"changedNodes"`
}

// ChangedNodesInput is the input for the changed_nodes MCP tool.
type ChangedNodesInput struct {
	RepoPath string `json:"repoPath" jsonschema:"the repository whose persisted graph to read"`
}

// ChangedNodesOutput is the result of the changed_nodes MCP tool.
type ChangedNodesOutput struct {
	GraphStore string              `json:"graphStore"`
	Files      []graph.FileChanges `json:"files"`
}

// ListGrammarsInput is the input for the list_grammars MCP tool.
type ListGrammarsInput struct{}

// ListGrammarsOutput is the result of the list_grammars MCP tool.
type ListGrammarsOutput struct {
	ConfigDir   string        `json:"configDir"`
	SearchPaths []string      `json:"searchPaths"`
	Grammars    []GrammarInfo `json:"grammars"`
	Missing     []string      `json:"missing"`
}

// GrammarInfo describes a grammar found on a search path.
type GrammarInfo struct {
	Name      string   `json:"name"`
	Scope     string   `json:"scope,omitempty"`
	FileTypes []string `json:"fileTypes"`
	Dir       string   `json:"dir"`
}
