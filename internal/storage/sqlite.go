package storage

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/tcm/internal/model"
)

const currentSchemaVersion = 1

// SQLiteStorage implements Storage using a SQLite database.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage creates a new SQLiteStorage with the given database path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLiteStorage{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// migrate runs database migrations.
func (s *SQLiteStorage) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < currentSchemaVersion {
		return s.migrateV1()
	}
	return nil
}

// migrateV1 creates the initial schema.
func (s *SQLiteStorage) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS test_cases (
			id TEXT PRIMARY KEY NOT NULL,
			file_path TEXT NOT NULL,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			data TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_test_cases_file_path ON test_cases(file_path);

		CREATE TABLE IF NOT EXISTS snapshot_meta (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			file_structure TEXT NOT NULL,
			saved_at TEXT NOT NULL
		);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load reads the cached snapshot. An empty database yields an empty snapshot.
func (s *SQLiteStorage) Load() (*model.Snapshot, error) {
	snap := model.NewSnapshot()

	var structureJSON string
	err := s.db.QueryRow("SELECT file_structure FROM snapshot_meta WHERE id = 1").Scan(&structureJSON)
	switch {
	case err == sql.ErrNoRows:
		return snap, nil
	case err != nil:
		return nil, err
	}
	if err := json.Unmarshal([]byte(structureJSON), &snap.Structure); err != nil {
		return nil, err
	}
	if snap.Structure == nil {
		snap.Structure = model.FileStructure{}
	}

	rows, err := s.db.Query(`
		SELECT file_path, data
		FROM test_cases
		ORDER BY file_path, position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var e model.Entry
		var data string
		if err := rows.Scan(&e.FilePath, &data); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &e.TestCase); err != nil {
			return nil, err
		}
		snap.Entries = append(snap.Entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return snap, nil
}

// Save replaces the cached snapshot.
// Uses a transaction for atomicity - all or nothing.
func (s *SQLiteStorage) Save(snap *model.Snapshot) error {
	structureJSON, err := json.Marshal(snap.Structure)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM test_cases"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO test_cases (id, file_path, position, title, data)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	positions := make(map[string]int)
	for _, e := range snap.Entries {
		data, err := json.Marshal(e.TestCase)
		if err != nil {
			return err
		}
		pos := positions[e.FilePath]
		positions[e.FilePath] = pos + 1

		if _, err := stmt.Exec(e.TestCase.ID, e.FilePath, pos, e.TestCase.Title, string(data)); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO snapshot_meta (id, file_structure, saved_at)
		VALUES (1, ?, ?)
	`, string(structureJSON), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	return tx.Commit()
}

// SavedAt returns when the snapshot was cached, or the zero time if never.
func (s *SQLiteStorage) SavedAt() (time.Time, error) {
	var savedAt string
	err := s.db.QueryRow("SELECT saved_at FROM snapshot_meta WHERE id = 1").Scan(&savedAt)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, savedAt)
}
