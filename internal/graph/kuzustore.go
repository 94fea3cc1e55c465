//go:build cgo

package graph

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection

	// roots maps a file's root node ID to the file index until that node
	// is inserted and the ROOT relationship can be created.
	roots map[NodeID]int
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given directory path. KuzuDB creates the directory itself for new databases.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	// Ensure parent directory exists (KuzuDB creates the leaf directory).
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

// ResetKuzuFileStore opens the database at dbPath for a new graph. A missing
// path is created. An existing database must hold only diff graph tables;
// its data is deleted and the file is kept. Anything else at dbPath is left
// untouched and reported as ErrNotGraphStore.
func ResetKuzuFileStore(ctx context.Context, dbPath string) (*KuzuStore, error) {
	info, err := os.Stat(dbPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return NewKuzuFileStore(dbPath)
	case err != nil:
		return nil, fmt.Errorf("kuzu: stat %s: %w", dbPath, err)
	case !info.Mode().IsRegular():
		return nil, fmt.Errorf("%w: %s is not a database file", ErrNotGraphStore, dbPath)
	}

	s, err := openKuzu(dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotGraphStore, err)
	}
	if err := s.reset(ctx, dbPath); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// reset checks that only diff graph tables exist and deletes their rows.
func (s *KuzuStore) reset(ctx context.Context, dbPath string) error {
	rows, err := s.query("CALL show_tables() RETURN name", nil)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if name := toString(r[0]); !graphTables[name] {
			return fmt.Errorf("%w: %s has table %s", ErrNotGraphStore, dbPath, name)
		}
	}
	if err := s.InitSchema(ctx); err != nil {
		return err
	}
	return s.exec("MATCH (n) DETACH DELETE n", nil)
}

func openKuzu(path string) (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database %s: %w", path, err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn, roots: make(map[NodeID]int)}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Order matters: node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS File(
		idx INT64,
		source_path STRING,
		target_path STRING,
		language STRING,
		edits INT64,
		PRIMARY KEY(idx)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS AstNode(
		id INT64,
		file INT64,
		kind_id INT64,
		kind STRING,
		named BOOLEAN,
		start_byte INT64,
		end_byte INT64,
		start_row INT64,
		end_row INT64,
		changed BOOLEAN,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS ROOT(FROM File TO AstNode)`,
	`CREATE REL TABLE IF NOT EXISTS NEXT(FROM AstNode TO AstNode, kind STRING)`,
}

// graphTables names every table created by ddlStatements.
var graphTables = map[string]bool{"File": true, "AstNode": true, "ROOT": true, "NEXT": true}

// relTables lists the relationship tables counted by Stats.
var relTables = []string{"NEXT"}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// AddFile inserts a File node. The ROOT relationship is created once the
// file's root node arrives.
func (s *KuzuStore) AddFile(_ context.Context, file FileNode) error {
	err := s.exec(
		"CREATE (f:File {idx: $idx, source_path: $src, target_path: $dst, language: $lang, edits: $edits})",
		map[string]any{
			"idx":   int64(file.Index),
			"src":   file.SourcePath,
			"dst":   file.TargetPath,
			"lang":  file.Language,
			"edits": int64(file.EditCount),
		},
	)
	if err != nil {
		return err
	}
	s.roots[file.Root] = file.Index
	return nil
}

// AddNode inserts an AstNode.
func (s *KuzuStore) AddNode(_ context.Context, node Node) error {
	err := s.exec(
		`CREATE (n:AstNode {id: $id, file: $file, kind_id: $kid, kind: $kind, named: $named,
			start_byte: $sb, end_byte: $eb, start_row: $sr, end_row: $er, changed: $changed})`,
		map[string]any{
			"id":      int64(node.ID),
			"file":    int64(node.File),
			"kid":     int64(node.KindID),
			"kind":    node.Kind,
			"named":   node.Named,
			"sb":      int64(node.StartByte),
			"eb":      int64(node.EndByte),
			"sr":      int64(node.StartRow),
			"er":      int64(node.EndRow),
			"changed": node.Changed,
		},
	)
	if err != nil {
		return err
	}

	file, ok := s.roots[node.ID]
	if !ok {
		return nil
	}
	delete(s.roots, node.ID)
	return s.exec(
		`MATCH (f:File {idx: $idx}), (n:AstNode {id: $id})
			CREATE (f)-[:ROOT]->(n)`,
		map[string]any{"idx": int64(file), "id": int64(node.ID)},
	)
}

// AddEdge inserts a NEXT relationship between two existing nodes.
func (s *KuzuStore) AddEdge(_ context.Context, edge Edge) error {
	return s.exec(
		`MATCH (a:AstNode {id: $src}), (b:AstNode {id: $dst})
			CREATE (a)-[:NEXT {kind: $kind}]->(b)`,
		map[string]any{
			"src":  int64(edge.From.ID),
			"dst":  int64(edge.To.ID),
			"kind": string(edge.Kind),
		},
	)
}

// ---------- Read operations ----------

// nodeColumns is the RETURN list matching rowToNode.
const nodeColumns = "n.id, n.file, n.kind_id, n.kind, n.named, n.start_byte, n.end_byte, n.start_row, n.end_row, n.changed"

// GetFile retrieves a File by index, or returns nil if not found.
func (s *KuzuStore) GetFile(_ context.Context, index int) (*FileNode, error) {
	rows, err := s.query(
		`MATCH (f:File {idx: $idx})
			OPTIONAL MATCH (f)-[:ROOT]->(n:AstNode)
			RETURN f.idx, f.source_path, f.target_path, f.language, f.edits, n.id`,
		map[string]any{"idx": int64(index)},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	r := rows[0]
	return &FileNode{
		Index:      toInt(r[0]),
		SourcePath: toString(r[1]),
		TargetPath: toString(r[2]),
		Language:   toString(r[3]),
		EditCount:  toInt(r[4]),
		Root:       NodeID(toInt(r[5])),
	}, nil
}

// GetNode retrieves a single AstNode by ID, or returns nil if not found.
func (s *KuzuStore) GetNode(_ context.Context, id NodeID) (*Node, error) {
	rows, err := s.query(
		"MATCH (n:AstNode {id: $id}) RETURN "+nodeColumns,
		map[string]any{"id": int64(id)},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowToNode(rows[0]), nil
}

// ChangedNodes returns the nodes of a file that were touched by edits, in
// traversal order.
func (s *KuzuStore) ChangedNodes(_ context.Context, file int) ([]Node, error) {
	rows, err := s.query(
		"MATCH (n:AstNode) WHERE n.file = $file AND n.changed = true RETURN "+nodeColumns+" ORDER BY n.id",
		map[string]any{"file": int64(file)},
	)
	if err != nil {
		return nil, err
	}
	nodes := make([]Node, 0, len(rows))
	for _, r := range rows {
		nodes = append(nodes, *rowToNode(r))
	}
	return nodes, nil
}

// Successor returns the node reached from id by its outgoing NEXT edge and
// the edge kind, or nil when id is the last node of its file.
func (s *KuzuStore) Successor(_ context.Context, id NodeID) (*Node, EdgeKind, error) {
	rows, err := s.query(
		"MATCH (a:AstNode {id: $id})-[r:NEXT]->(n:AstNode) RETURN "+nodeColumns+", r.kind",
		map[string]any{"id": int64(id)},
	)
	if err != nil {
		return nil, "", err
	}
	if len(rows) == 0 {
		return nil, "", nil
	}
	r := rows[0]
	return rowToNode(r), EdgeKind(toString(r[10])), nil
}

// Changes collects, for every stored file in index order, its root and its
// changed nodes with their traversal successors.
func (s *KuzuStore) Changes(ctx context.Context) ([]FileChanges, error) {
	out := []FileChanges{}
	for idx := 0; ; idx++ {
		file, err := s.GetFile(ctx, idx)
		if err != nil {
			return nil, fmt.Errorf("file %d: %w", idx, err)
		}
		if file == nil {
			return out, nil
		}

		fc := FileChanges{File: *file, Changed: []ChangedNode{}}
		if fc.Root, err = s.GetNode(ctx, file.Root); err != nil {
			return nil, fmt.Errorf("root of %s: %w", file.SourcePath, err)
		}

		changed, err := s.ChangedNodes(ctx, idx)
		if err != nil {
			return nil, fmt.Errorf("changed nodes of %s: %w", file.SourcePath, err)
		}
		for _, n := range changed {
			next, kind, err := s.Successor(ctx, n.ID)
			if err != nil {
				return nil, fmt.Errorf("successor of %d: %w", n.ID, err)
			}
			fc.Changed = append(fc.Changed, ChangedNode{Node: n, Next: next, NextKind: kind})
		}
		out = append(out, fc)
	}
}

// ---------- Stats ----------

// Stats returns counts of files, nodes and traversal edges.
func (s *KuzuStore) Stats(_ context.Context) (*GraphStats, error) {
	files, err := s.countTable("File")
	if err != nil {
		return nil, err
	}
	nodes, err := s.countTable("AstNode")
	if err != nil {
		return nil, err
	}
	edges, err := s.countEdges()
	if err != nil {
		return nil, err
	}
	return &GraphStats{
		FileCount: files,
		NodeCount: nodes,
		EdgeCount: edges,
	}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// countTable returns the number of rows in a node table.
func (s *KuzuStore) countTable(table string) (int, error) {
	// Table name is a fixed internal constant, not user input.
	cypher := fmt.Sprintf("MATCH (n:%s) RETURN count(n)", table)
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// countEdges returns the number of traversal edges. ROOT links are
// bookkeeping and are not counted.
func (s *KuzuStore) countEdges() (int, error) {
	total := 0
	for _, t := range relTables {
		cypher := fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r)", t)
		rows, err := s.query(cypher, nil)
		if err != nil {
			return 0, err
		}
		if len(rows) > 0 && len(rows[0]) > 0 {
			total += toInt(rows[0][0])
		}
	}
	return total, nil
}

// rowToNode converts a result row in nodeColumns order into a Node.
func rowToNode(r []any) *Node {
	return &Node{
		ID:        NodeID(toInt(r[0])),
		File:      toInt(r[1]),
		KindID:    uint16(toInt(r[2])),
		Kind:      toString(r[3]),
		Named:     toBool(r[4]),
		StartByte: uint(toInt(r[5])),
		EndByte:   uint(toInt(r[6])),
		StartRow:  uint(toInt(r[7])),
		EndRow:    uint(toInt(r[8])),
		Changed:   toBool(r[9]),
	}
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).
// These helpers safely coerce any -> concrete type.

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}
