package graph

// --- Enums ---

// EdgeKind classifies a traversal edge. The edge set is the pre-order path
// through each tree, not its parent/child hierarchy.
type EdgeKind string

const (
	// EdgeDescend links a node to its first child.
	EdgeDescend EdgeKind = "descend"
	// EdgeSibling links a leaf to its next sibling.
	EdgeSibling EdgeKind = "sibling"
	// EdgeAscend links the last node of a subtree to the next sibling of
	// one of its ancestors.
	EdgeAscend EdgeKind = "ascend"
)

// --- Models ---

// NodeID indexes the graph's node arena. IDs are assigned in traversal
// order and are unique across all files of a graph.
type NodeID int

// FileNode describes one file folded into the graph.
type FileNode struct {
	Index      int    `json:"index"`
	SourcePath string `json:"sourcePath"`
	TargetPath string `json:"targetPath"`
	Language   string `json:"language"`
	EditCount  int    `json:"editCount"`
	Root       NodeID `json:"root"`
}

// Node is a snapshot of a syntax tree node, independent of the tree.
type Node struct {
	ID        NodeID `json:"id"`
	File      int    `json:"file"`
	KindID    uint16 `json:"kindId"`
	Kind      string `json:"kind"`
	Named     bool   `json:"named"`
	StartByte uint   `json:"startByte"`
	EndByte   uint   `json:"endByte"`
	StartRow  uint   `json:"startRow"`
	EndRow    uint   `json:"endRow"`
	Changed   bool   `json:"changed"`
}

// Edge is a directed traversal edge carrying both endpoints' snapshots.
type Edge struct {
	From Node     `json:"from"`
	To   Node     `json:"to"`
	Kind EdgeKind `json:"kind"`
}

// GraphStats summarizes a graph.
type GraphStats struct {
	FileCount int `json:"fileCount"`
	NodeCount int `json:"nodeCount"`
	EdgeCount int `json:"edgeCount"`
}

// FileChanges lists the changed nodes of one persisted file.
type FileChanges struct {
	File    FileNode      `json:"file"`
	Root    *Node         `json:"root,omitempty"`
	Changed []ChangedNode `json:"changed"`
}

// ChangedNode is a changed node and the node its traversal edge leads to.
// Next is nil for the last node of a file.
type ChangedNode struct {
	Node
	Next     *Node    `json:"next,omitempty"`
	NextKind EdgeKind `json:"nextKind,omitempty"`
}
