// Package history persists conversion runs in SQLite so past conversions and
// their review flags can be listed from the CLI and the HTTP API.
package history

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/fabricshift/fabricshift/pkg/convert"
)

//go:embed schema.sql
var schemaSQL string

// Record is one persisted conversion.
type Record struct {
	ID        string           `json:"id"`
	Source    string           `json:"source"` // file path, "stdin", or "api"
	InputSQL  string           `json:"input_sql"`
	OutputSQL string           `json:"output_sql"`
	Metrics   convert.Snapshot `json:"metrics"`
	CreatedAt time.Time        `json:"created_at"`
}

// Store is a SQLite-backed conversion history.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens the history database at path, creating the schema when absent.
// Use ":memory:" for an in-memory store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging history database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record inserts one conversion and returns it with its generated ID.
func (s *Store) Record(source, input, output string, snap convert.Snapshot) (*Record, error) {
	rec := &Record{
		ID:        uuid.New().String(),
		Source:    source,
		InputSQL:  input,
		OutputSQL: output,
		Metrics:   snap,
		CreatedAt: time.Now().UTC(),
	}

	flags, err := json.Marshal(snap.FlaggedLines)
	if err != nil {
		return nil, fmt.Errorf("encoding flags: %w", err)
	}
	unsupported, err := json.Marshal(snap.UnsupportedFunctions)
	if err != nil {
		return nil, fmt.Errorf("encoding unsupported functions: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO conversions
		   (id, source, input_sql, output_sql, total_statements,
		    successful_conversions, flagged_statements, success_rate,
		    flags_json, unsupported_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Source, rec.InputSQL, rec.OutputSQL,
		snap.TotalStatements, snap.SuccessfulConversions,
		snap.FlaggedStatements, snap.SuccessRate,
		string(flags), string(unsupported), rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("recording conversion: %w", err)
	}
	return rec, nil
}

// List returns the most recent conversions, newest first. A limit <= 0 means
// a default page of 50.
func (s *Store) List(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, source, input_sql, output_sql, total_statements,
		        successful_conversions, flagged_statements, success_rate,
		        flags_json, unsupported_json, created_at
		   FROM conversions
		  ORDER BY created_at DESC, id
		  LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing conversions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing conversions: %w", err)
	}
	return records, nil
}

// Get retrieves one conversion by ID.
func (s *Store) Get(id string) (*Record, error) {
	rows, err := s.db.Query(
		`SELECT id, source, input_sql, output_sql, total_statements,
		        successful_conversions, flagged_statements, success_rate,
		        flags_json, unsupported_json, created_at
		   FROM conversions WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting conversion: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("getting conversion: %w", err)
		}
		return nil, fmt.Errorf("conversion not found: %s", id)
	}
	return scanRecord(rows)
}

func scanRecord(rows *sql.Rows) (*Record, error) {
	var rec Record
	var flagsJSON, unsupportedJSON string
	err := rows.Scan(
		&rec.ID, &rec.Source, &rec.InputSQL, &rec.OutputSQL,
		&rec.Metrics.TotalStatements, &rec.Metrics.SuccessfulConversions,
		&rec.Metrics.FlaggedStatements, &rec.Metrics.SuccessRate,
		&flagsJSON, &unsupportedJSON, &rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning conversion: %w", err)
	}
	if err := json.Unmarshal([]byte(flagsJSON), &rec.Metrics.FlaggedLines); err != nil {
		return nil, fmt.Errorf("decoding flags: %w", err)
	}
	if err := json.Unmarshal([]byte(unsupportedJSON), &rec.Metrics.UnsupportedFunctions); err != nil {
		return nil, fmt.Errorf("decoding unsupported functions: %w", err)
	}
	return &rec, nil
}
