package board

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ritzau/brandos-canvas/pkg/fields"
	"github.com/ritzau/brandos-canvas/pkg/graph"
	"github.com/ritzau/brandos-canvas/pkg/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id      TEXT PRIMARY KEY,
	type    TEXT NOT NULL,
	data    TEXT NOT NULL,
	width   REAL NOT NULL,
	height  REAL NOT NULL,
	mtime   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS edges (
	id            TEXT PRIMARY KEY,
	source        TEXT NOT NULL,
	source_handle TEXT NOT NULL,
	target        TEXT NOT NULL,
	target_handle TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS edges_source ON edges(source);
CREATE INDEX IF NOT EXISTS edges_target ON edges(target);
`

// SQLitePersister keeps the board in a single SQLite file. Node data is
// stored as a JSON column.
type SQLitePersister struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the board database at path
func OpenSQLite(path string) (*SQLitePersister, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open board db %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema in %s: %w", path, err)
	}

	logging.Debug("board db opened", "path", path)
	return &SQLitePersister{db: db, path: path}, nil
}

// SaveNode inserts or replaces a node
func (p *SQLitePersister) SaveNode(ctx context.Context, inst Instance) error {
	data, err := json.Marshal(inst.Data)
	if err != nil {
		return fmt.Errorf("encode data of %s: %w", inst.ID, err)
	}

	_, err = p.db.ExecContext(ctx,
		`INSERT INTO nodes (id, type, data, width, height, mtime) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			type = excluded.type, data = excluded.data,
			width = excluded.width, height = excluded.height, mtime = excluded.mtime`,
		inst.ID, inst.Type, string(data), inst.Size.Width, inst.Size.Height, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save node %s: %w", inst.ID, err)
	}
	return nil
}

// DeleteNode removes a node and every edge attached to it
func (p *SQLitePersister) DeleteNode(ctx context.Context, id string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete %s: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM edges WHERE source = ? OR target = ?", id, id); err != nil {
		return fmt.Errorf("delete edges of %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM nodes WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete node %s: %w", id, err)
	}
	return tx.Commit()
}

// SaveEdge inserts or replaces an edge
func (p *SQLitePersister) SaveEdge(ctx context.Context, e graph.Edge) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO edges (id, source, source_handle, target, target_handle) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Source, e.SourceHandle, e.Target, e.TargetHandle,
	)
	if err != nil {
		return fmt.Errorf("save edge %s: %w", e, err)
	}
	return nil
}

// DeleteEdge removes an edge
func (p *SQLitePersister) DeleteEdge(ctx context.Context, id string) error {
	if _, err := p.db.ExecContext(ctx, "DELETE FROM edges WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete edge %s: %w", id, err)
	}
	return nil
}

// Load reads the whole board
func (p *SQLitePersister) Load(ctx context.Context) ([]Instance, []graph.Edge, error) {
	nodes, err := p.loadNodes(ctx)
	if err != nil {
		return nil, nil, err
	}
	edges, err := p.loadEdges(ctx)
	if err != nil {
		return nil, nil, err
	}
	return nodes, edges, nil
}

func (p *SQLitePersister) loadNodes(ctx context.Context) ([]Instance, error) {
	rows, err := p.db.QueryContext(ctx, "SELECT id, type, data, width, height FROM nodes ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Instance
	for rows.Next() {
		var (
			inst Instance
			raw  string
			size fields.Size
		)
		if err := rows.Scan(&inst.ID, &inst.Type, &raw, &size.Width, &size.Height); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &inst.Data); err != nil {
			// A corrupt record should not lose the rest of the board
			logging.Warn("node data unreadable, starting empty", "nodeID", inst.ID, "error", err)
			inst.Data = map[string]any{}
		}
		inst.Size = size
		out = append(out, inst)
	}
	return out, rows.Err()
}

func (p *SQLitePersister) loadEdges(ctx context.Context) ([]graph.Edge, error) {
	rows, err := p.db.QueryContext(ctx,
		"SELECT id, source, source_handle, target, target_handle FROM edges ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []graph.Edge
	for rows.Next() {
		var e graph.Edge
		if err := rows.Scan(&e.ID, &e.Source, &e.SourceHandle, &e.Target, &e.TargetHandle); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the database
func (p *SQLitePersister) Close() error {
	return p.db.Close()
}
