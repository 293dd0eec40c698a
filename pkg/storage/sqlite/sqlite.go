// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/notechat/pkg/storage"
)

// driverName is go-sqlite3 with a Unicode-aware contains_fold(content, query)
// SQL function. The built-in lower() only folds ASCII.
const driverName = "sqlite3_notechat"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("contains_fold", storage.Matches, true)
		},
	})
}

// SQLiteDriver implements storage.Driver using SQLite through
// github.com/mattn/go-sqlite3.
type SQLiteDriver struct {
	db *sql.DB
}

// NewSQLiteDriver creates a new SQLite-backed driver.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewSQLiteDriver(dbPath string) (*SQLiteDriver, error) {
	db, err := sql.Open(driverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite serializes writers anyway, and every
	// connection to ":memory:" would otherwise see its own database.
	db.SetMaxOpenConns(1)

	d := &SQLiteDriver{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return d, nil
}

// migrate creates the necessary tables if they don't exist.
func (d *SQLiteDriver) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scratch (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		content TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		name TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := d.db.Exec(schema)
	return err
}

func (d *SQLiteDriver) ReadScratch(ctx context.Context) (string, error) {
	var content string
	err := d.db.QueryRowContext(ctx, `SELECT content FROM scratch WHERE id = 1`).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read scratch transcript: %w", err)
	}
	return content, nil
}

func (d *SQLiteDriver) WriteScratch(ctx context.Context, content string) error {
	query := `
	INSERT INTO scratch (id, content, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`

	if _, err := d.db.ExecContext(ctx, query, content); err != nil {
		return fmt.Errorf("failed to write scratch transcript: %w", err)
	}
	return nil
}

// PutSnapshot inserts a snapshot. The primary key keeps snapshots immutable.
func (d *SQLiteDriver) PutSnapshot(ctx context.Context, name, content string) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}

	_, err := d.db.ExecContext(ctx, `INSERT INTO snapshots (name, content) VALUES (?, ?)`, name, content)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
		return storage.ExistsError{Name: name}
	}
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

func (d *SQLiteDriver) GetSnapshot(ctx context.Context, name string) (string, error) {
	var content string
	err := d.db.QueryRowContext(ctx, `SELECT content FROM snapshots WHERE name = ?`, name).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.NotFoundError{Name: name}
	}
	if err != nil {
		return "", fmt.Errorf("failed to scan snapshot: %w", err)
	}
	return content, nil
}

func (d *SQLiteDriver) ListSnapshots(ctx context.Context) ([]storage.SnapshotInfo, error) {
	return d.query(ctx, `SELECT name, content FROM snapshots`)
}

func (d *SQLiteDriver) Search(ctx context.Context, query string) ([]storage.SnapshotInfo, error) {
	if query == "" {
		return d.ListSnapshots(ctx)
	}
	return d.query(ctx, `SELECT name, content FROM snapshots WHERE contains_fold(content, ?)`, query)
}

func (d *SQLiteDriver) query(ctx context.Context, query string, args ...any) ([]storage.SnapshotInfo, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var infos []storage.SnapshotInfo
	for rows.Next() {
		var name, content string
		if err := rows.Scan(&name, &content); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		infos = append(infos, storage.NewSnapshotInfo(name, content))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}

	storage.SortNewestFirst(infos)
	return infos, nil
}

// Close closes the database connection.
func (d *SQLiteDriver) Close() error {
	return d.db.Close()
}
