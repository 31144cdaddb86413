package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver
)

// Schema is the layout SQLiteSource reads. Each measurements row is one
// dispensation; position orders the dispensations of a pyroprint.
const Schema = `
CREATE TABLE IF NOT EXISTS measurements (
    isolate    TEXT    NOT NULL,
    region     TEXT    NOT NULL,
    pyroprint  INTEGER NOT NULL,
    well       TEXT    NOT NULL,
    position   INTEGER NOT NULL,
    nucleotide TEXT    NOT NULL,
    height     REAL    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_measurements_isolate ON measurements(isolate);
CREATE TABLE IF NOT EXISTS isolate_labels (
    isolate TEXT NOT NULL,
    label   TEXT NOT NULL
);
`

// SQLiteSource reads measurements from a SQLite database.
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLite opens the database at path. The source only ever reads.
func OpenSQLite(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &SQLiteSource{db: db}, nil
}

// NewSQLiteSource wraps an already-open database.
func NewSQLiteSource(db *sql.DB) *SQLiteSource {
	return &SQLiteSource{db: db}
}

// InitSchema creates the tables SQLiteSource reads, if missing.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *SQLiteSource) Close() error { return s.db.Close() }

// Records returns the measurement rows of isolateIDs (all if empty),
// ordered by isolate, region, pyroprint and position.
func (s *SQLiteSource) Records(ctx context.Context, isolateIDs []string) ([]Record, error) {
	where, args := isolateFilter(isolateIDs)
	query := `SELECT isolate, region, pyroprint, well, nucleotide, height
		FROM measurements` + where + `
		ORDER BY isolate, region, pyroprint, position`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query measurements: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Isolate, &r.Region, &r.Pyroprint, &r.Well, &r.Nucleotide, &r.Height); err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read measurements: %w", err)
	}
	return out, nil
}

// Labels returns the taxonomy labels of isolateIDs (all if empty).
func (s *SQLiteSource) Labels(ctx context.Context, isolateIDs []string) (map[string][]string, error) {
	where, args := isolateFilter(isolateIDs)
	query := `SELECT isolate, label FROM isolate_labels` + where + ` ORDER BY isolate, rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query labels: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var isolate, label string
		if err := rows.Scan(&isolate, &label); err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		out[isolate] = append(out[isolate], label)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	return out, nil
}

func isolateFilter(ids []string) (string, []any) {
	if len(ids) == 0 {
		return "", nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return " WHERE isolate IN (" + strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",") + ")", args
}
