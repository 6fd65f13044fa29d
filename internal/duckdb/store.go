// Package duckdb persists synchronized meta-genome runs.
// Each run stores its genomes, chromosomes with meta-genome lengths,
// classification counters, source file fingerprints and every variant
// record with its offsets, keyed by a UUID run id.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding synchronized runs.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, empty for in-memory databases.
func (s *Store) Path() string {
	return s.path
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id VARCHAR PRIMARY KEY,
		reference VARCHAR,
		created_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS run_genomes (
		run_id VARCHAR,
		genome VARCHAR,
		ord INTEGER,
		PRIMARY KEY (run_id, genome)
	)`,
	`CREATE TABLE IF NOT EXISTS run_chromosomes (
		run_id VARCHAR,
		chrom VARCHAR,
		ord INTEGER,
		length BIGINT,
		meta_length BIGINT,
		PRIMARY KEY (run_id, chrom)
	)`,
	`CREATE TABLE IF NOT EXISTS run_stats (
		run_id VARCHAR,
		chrom VARCHAR,
		outcome VARCHAR,
		count BIGINT,
		PRIMARY KEY (run_id, chrom, outcome)
	)`,
	`CREATE TABLE IF NOT EXISTS run_sources (
		run_id VARCHAR,
		path VARCHAR,
		size BIGINT,
		mod_time TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS variant_records (
		run_id VARCHAR,
		genome VARCHAR,
		chrom VARCHAR,
		pos BIGINT,
		type VARCHAR,
		length BIGINT,
		on_first_allele BOOLEAN,
		on_second_allele BOOLEAN,
		initial_reference_offset BIGINT,
		initial_meta_offset BIGINT,
		initial_genome_offset BIGINT,
		extra_offset BIGINT,
		gap_offset BIGINT,
		PRIMARY KEY (run_id, genome, chrom, pos)
	)`,
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
