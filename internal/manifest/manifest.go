// Package manifest records what a conversion run produced in a SQLite
// database: one row per converted note and per copied asset. It is an audit
// artifact consumed by the serve command; the conversion pipeline itself
// never reads it back — the in-memory identity table is the authority for
// link resolution.
package manifest

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	basename     TEXT PRIMARY KEY,
	source_path  TEXT NOT NULL,
	org_path     TEXT NOT NULL,
	id           TEXT NOT NULL,
	title        TEXT NOT NULL DEFAULT '',
	checksum     TEXT NOT NULL DEFAULT '',
	converted_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS assets (
	source_path TEXT PRIMARY KEY,
	dest_path   TEXT NOT NULL,
	kind        TEXT NOT NULL DEFAULT 'other'
);
`

// Recorder is the write side used by the conversion pipeline.
type Recorder interface {
	RecordNote(rec models.ConversionRecord) error
	RecordAsset(rec models.AssetRecord) error
}

// Verify *DB satisfies Recorder at compile time.
var _ Recorder = (*DB)(nil)

// DB wraps a sql.DB with manifest-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("manifest: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("manifest: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("manifest: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Reset clears all rows. Called at the start of every directory run:
// identifiers are run-scoped, so rows from an earlier run would lie.
func (db *DB) Reset() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("manifest: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM notes`); err != nil {
		return fmt.Errorf("manifest: clear notes: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM assets`); err != nil {
		return fmt.Errorf("manifest: clear assets: %w", err)
	}
	return tx.Commit()
}

// RecordNote inserts or replaces the row for a converted note.
func (db *DB) RecordNote(rec models.ConversionRecord) error {
	_, err := db.conn.Exec(`
		INSERT INTO notes (basename, source_path, org_path, id, title, checksum, converted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(basename) DO UPDATE SET
			source_path  = excluded.source_path,
			org_path     = excluded.org_path,
			id           = excluded.id,
			title        = excluded.title,
			checksum     = excluded.checksum,
			converted_at = excluded.converted_at
	`, rec.Basename, rec.SourcePath, rec.OrgPath, rec.ID, rec.Title, rec.Checksum, rec.ConvertedAt)
	if err != nil {
		return fmt.Errorf("manifest: record note: %w", err)
	}
	return nil
}

// RecordAsset inserts or replaces the row for a copied asset.
func (db *DB) RecordAsset(rec models.AssetRecord) error {
	_, err := db.conn.Exec(`
		INSERT INTO assets (source_path, dest_path, kind)
		VALUES (?, ?, ?)
		ON CONFLICT(source_path) DO UPDATE SET
			dest_path = excluded.dest_path,
			kind      = excluded.kind
	`, rec.SourcePath, rec.DestPath, rec.Kind)
	if err != nil {
		return fmt.Errorf("manifest: record asset: %w", err)
	}
	return nil
}

// ListNotes returns every note row ordered by base name.
func (db *DB) ListNotes() ([]models.ConversionRecord, error) {
	rows, err := db.conn.Query(`
		SELECT basename, source_path, org_path, id, title, checksum, converted_at
		FROM notes ORDER BY basename
	`)
	if err != nil {
		return nil, fmt.Errorf("manifest: list notes: %w", err)
	}
	defer rows.Close()

	var out []models.ConversionRecord
	for rows.Next() {
		var rec models.ConversionRecord
		if err := rows.Scan(&rec.Basename, &rec.SourcePath, &rec.OrgPath, &rec.ID,
			&rec.Title, &rec.Checksum, &rec.ConvertedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetNote returns the row for one base name, or apperr.ErrNotFound.
func (db *DB) GetNote(basename string) (*models.ConversionRecord, error) {
	var rec models.ConversionRecord
	err := db.conn.QueryRow(`
		SELECT basename, source_path, org_path, id, title, checksum, converted_at
		FROM notes WHERE basename = ?
	`, basename).Scan(&rec.Basename, &rec.SourcePath, &rec.OrgPath, &rec.ID,
		&rec.Title, &rec.Checksum, &rec.ConvertedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("manifest: get note: %w", err)
	}
	return &rec, nil
}

// IDTable reconstructs the name→identifier mapping from the recorded notes.
func (db *DB) IDTable() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT basename, id FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("manifest: id table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var name, id string
		if err := rows.Scan(&name, &id); err != nil {
			return nil, err
		}
		out[name] = id
	}
	return out, rows.Err()
}

// ListAssets returns every asset row ordered by source path.
func (db *DB) ListAssets() ([]models.AssetRecord, error) {
	rows, err := db.conn.Query(`SELECT source_path, dest_path, kind FROM assets ORDER BY source_path`)
	if err != nil {
		return nil, fmt.Errorf("manifest: list assets: %w", err)
	}
	defer rows.Close()

	var out []models.AssetRecord
	for rows.Next() {
		var rec models.AssetRecord
		if err := rows.Scan(&rec.SourcePath, &rec.DestPath, &rec.Kind); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
