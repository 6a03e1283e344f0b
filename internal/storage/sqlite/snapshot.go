package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sandevgo/medhelp/internal/core"
)

const snapshotSchema = `
CREATE TABLE meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
CREATE TABLE records (
    position    INTEGER PRIMARY KEY,
    title       TEXT     NOT NULL,
    source_url  TEXT     NOT NULL,
    text        TEXT     NOT NULL,
    category    TEXT     NOT NULL,
    ingested_at DATETIME NOT NULL,
    vector      BLOB     NOT NULL
);`

// SnapshotStore keeps the vector index in a standalone sqlite file.
// Each Save writes a complete new file and renames it over the old one.
type SnapshotStore struct {
	path string
}

func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

func (s *SnapshotStore) Path() string {
	return s.path
}

func (s *SnapshotStore) Save(ctx context.Context, records []core.IndexRecord) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := writeSnapshot(ctx, tmpPath, records); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

func writeSnapshot(ctx context.Context, path string, records []core.IndexRecord) error {
	db, err := sql.Open(driverName, "file:"+path)
	if err != nil {
		return fmt.Errorf("failed to open temp snapshot: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, snapshotSchema); err != nil {
		return fmt.Errorf("failed to create snapshot schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (position, title, source_url, text, category, ingested_at, vector) VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		blob, err := serializeVector(r.Vector)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, i, r.Title, r.SourceURL, r.Text, r.Category, r.IngestedAt.UTC(), blob); err != nil {
			return fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES ('count', ?)`, strconv.Itoa(len(records))); err != nil {
		return fmt.Errorf("failed to write snapshot meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return db.Close()
}

// Load reads every record in position order. A missing file returns core.ErrNoSnapshot.
func (s *SnapshotStore) Load(ctx context.Context) ([]core.IndexRecord, error) {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return nil, core.ErrNoSnapshot
	}

	db, err := sql.Open(driverName, "file:"+s.path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer db.Close()

	var countStr string
	if err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'count'`).Scan(&countStr); err != nil {
		return nil, fmt.Errorf("failed to read snapshot meta: %w", err)
	}
	want, err := strconv.Atoi(countStr)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot count %q: %w", countStr, err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT title, source_url, text, category, ingested_at, vector FROM records ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer rows.Close()

	records := make([]core.IndexRecord, 0, want)
	for rows.Next() {
		var r core.IndexRecord
		var blob []byte
		if err := rows.Scan(&r.Title, &r.SourceURL, &r.Text, &r.Category, &r.IngestedAt, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if r.Vector, err = deserializeVector(blob); err != nil {
			return nil, fmt.Errorf("record %d: %w", len(records), err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(records) != want {
		return nil, fmt.Errorf("snapshot holds %d records, meta says %d", len(records), want)
	}
	return records, nil
}
