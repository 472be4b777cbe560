// Package prefs provides the SQLite-backed local store for state that must
// survive restarts: the shared hospital-department selection and the
// assessment history. Per-session intake state deliberately stays out of it.
package prefs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/symptoguide-engine/internal/domain"
)

// departmentKey is the single shared slot for the department selection. Two
// views write it (specialists and results), one reads it (hospitals); last
// writer wins by contract.
const departmentKey = "selectedHospitalDepartment"

// SQLiteStore implements DepartmentStore and assessment history persistence.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// HistoryEntry is one recorded assessment outcome.
type HistoryEntry struct {
	ID        int64                    `json:"id"`
	SessionID string                   `json:"session_id"`
	Kind      domain.ResultKind        `json:"kind"`
	Headline  string                   `json:"headline"` // disease or concern level
	Emergency bool                     `json:"emergency"`
	Result    *domain.AssessmentResult `json:"result"`
	CreatedAt time.Time                `json:"created_at"`
}

// NewSQLiteStore creates the store, its database file and schema as needed.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL DEFAULT '',
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS assessment_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		headline TEXT NOT NULL DEFAULT '',
		emergency INTEGER NOT NULL DEFAULT 0,
		result_json TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_history_created_at ON assessment_history(created_at);
	CREATE INDEX IF NOT EXISTS idx_history_session ON assessment_history(session_id);
	`

	_, err := db.Exec(schema)
	return err
}

// SelectedDepartment returns the shared department slot; empty when unset.
func (s *SQLiteStore) SelectedDepartment(ctx context.Context) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM preferences WHERE key = ?", departmentKey,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read department selection: %w", err)
	}
	return value, nil
}

// SetSelectedDepartment overwrites the shared department slot.
func (s *SQLiteStore) SetSelectedDepartment(ctx context.Context, department string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, departmentKey, department, time.Now())
	if err != nil {
		return fmt.Errorf("failed to write department selection: %w", err)
	}
	return nil
}

// RecordAssessment appends a completed assessment to the history.
func (s *SQLiteStore) RecordAssessment(ctx context.Context, sessionID string, result *domain.AssessmentResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	headline := ""
	emergency := false
	switch result.Kind {
	case domain.ResultML:
		headline = result.ML.Disease
		emergency = result.ML.Severity.IsEmergency
	case domain.ResultFallback:
		headline = string(result.Fallback.ConcernLevel)
		emergency = result.Fallback.ConcernLevel == domain.ConcernHigh
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO assessment_history (session_id, kind, headline, emergency, result_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sessionID, string(result.Kind), headline, emergency, string(payload), time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

// History returns the most recent assessments, newest first.
func (s *SQLiteStore) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, kind, headline, emergency, result_json, created_at
		FROM assessment_history
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		var kind, payload string
		if err := rows.Scan(&entry.ID, &entry.SessionID, &kind, &entry.Headline, &entry.Emergency, &payload, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entry.Kind = domain.ResultKind(kind)

		result := &domain.AssessmentResult{}
		if err := json.Unmarshal([]byte(payload), result); err != nil {
			return nil, fmt.Errorf("failed to decode history payload: %w", err)
		}
		entry.Result = result
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
