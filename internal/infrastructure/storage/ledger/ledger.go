// Package ledger records completed refinement runs in an embedded SQLite
// database, giving the pipeline a durable history of which species were
// optimised with which method and at what energy.
package ledger

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/turtacn/ChemConformer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemConformer/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS optimizations (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT    NOT NULL,
	method     TEXT    NOT NULL,
	energy     REAL    NOT NULL,
	n_atoms    INTEGER NOT NULL,
	solvent    TEXT    NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_optimizations_name ON optimizations(name);
`

// Record is one completed refinement run.
type Record struct {
	Name      string
	Method    string
	Energy    float64
	NAtoms    int
	Solvent   string
	CreatedAt time.Time
}

// Store is the SQLite-backed run ledger.  Safe for concurrent use; SQLite
// serialises writers internally.
type Store struct {
	db  *sql.DB
	log logging.Logger
}

// Open opens (or creates) the ledger database at path and applies the schema.
// Use ":memory:" for an ephemeral ledger.
func Open(path string, log logging.Logger) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "opening run ledger").
			WithDetail("path=" + path)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.CodeInternal, "applying run ledger schema").
			WithDetail("path=" + path)
	}
	return &Store{db: db, log: log.Named("ledger")}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Record appends one run to the ledger.  A zero CreatedAt is stamped with the
// current time.
func (s *Store) Record(ctx context.Context, rec Record) error {
	if rec.Name == "" || rec.Method == "" {
		return errors.InvalidParam("ledger record requires a name and a method")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO optimizations (name, method, energy, n_atoms, solvent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Name, rec.Method, rec.Energy, rec.NAtoms, rec.Solvent, rec.CreatedAt)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "recording refinement run").
			WithDetail("name=" + rec.Name)
	}

	s.log.Debug("refinement run recorded",
		logging.String("name", rec.Name),
		logging.String("method", rec.Method),
		logging.Float64("energy", rec.Energy))
	return nil
}

// History returns the runs recorded for a species name, newest first.
func (s *Store) History(ctx context.Context, name string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, method, energy, n_atoms, solvent, created_at
		 FROM optimizations WHERE name = ? ORDER BY created_at DESC, id DESC`, name)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "querying run history").
			WithDetail("name=" + name)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Recent returns the latest runs across all species, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, method, energy, n_atoms, solvent, created_at
		 FROM optimizations ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "querying recent runs")
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Name, &rec.Method, &rec.Energy, &rec.NAtoms, &rec.Solvent, &rec.CreatedAt); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "scanning ledger row")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "iterating ledger rows")
	}
	return out, nil
}
