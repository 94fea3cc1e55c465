package graph

import (
	"context"
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Builder folds syntax trees into a Store. Node IDs are assigned from a
// single counter, so several files can share one store without collisions.
type Builder struct {
	store Store
	next  NodeID
	files int
}

// NewBuilder returns a Builder writing to store, which must be empty.
func NewBuilder(store Store) *Builder {
	return &Builder{store: store}
}

// Fold walks tree in pre-order with a cursor and records every node plus an
// edge from each node to the node visited after it: its first child, else
// its next sibling, else the next sibling of its nearest ancestor that has
// one. A tree of N nodes yields N-1 edges. file.Index and file.Root are
// assigned here; the completed FileNode is returned.
func (b *Builder) Fold(ctx context.Context, file FileNode, tree *tree_sitter.Tree) (FileNode, error) {
	if tree == nil {
		return file, fmt.Errorf("fold %s: nil tree", file.SourcePath)
	}

	file.Index = b.files
	file.Root = b.next
	if err := b.store.AddFile(ctx, file); err != nil {
		return file, fmt.Errorf("add file %s: %w", file.SourcePath, err)
	}
	b.files++

	root := tree.RootNode()
	cursor := root.Walk()
	defer cursor.Close()

	prev, err := b.visit(ctx, file.Index, cursor.Node())
	if err != nil {
		return file, err
	}

	for {
		kind := EdgeDescend
		if !cursor.GotoFirstChild() {
			kind = EdgeSibling
			for !cursor.GotoNextSibling() {
				if !cursor.GotoParent() {
					return file, nil
				}
				kind = EdgeAscend
			}
		}

		cur, err := b.visit(ctx, file.Index, cursor.Node())
		if err != nil {
			return file, err
		}
		if err := b.store.AddEdge(ctx, Edge{From: prev, To: cur, Kind: kind}); err != nil {
			return file, fmt.Errorf("add edge %d->%d: %w", prev.ID, cur.ID, err)
		}
		prev = cur
	}
}

// visit snapshots n under the next arena ID and stores it.
func (b *Builder) visit(ctx context.Context, file int, n *tree_sitter.Node) (Node, error) {
	node := Node{
		ID:        b.next,
		File:      file,
		KindID:    n.KindId(),
		Kind:      n.Kind(),
		Named:     n.IsNamed(),
		StartByte: n.StartByte(),
		EndByte:   n.EndByte(),
		StartRow:  n.StartPosition().Row,
		EndRow:    n.EndPosition().Row,
		Changed:   n.HasChanges(),
	}
	if err := b.store.AddNode(ctx, node); err != nil {
		return Node{}, fmt.Errorf("add node %d (%s): %w", node.ID, node.Kind, err)
	}
	b.next++
	return node, nil
}
