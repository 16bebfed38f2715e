// Package history persists supervision decisions, task runs, and operator
// feedback for diagnostics and training. The store is append-only and is
// never read back into scheduler state.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Decision records one supervision verdict and the state it was made in.
type Decision struct {
	ID         string
	TaskID     string
	AgentID    string
	Action     string
	Score      float64
	Considered string // Ranked alternatives as JSON
	Quality    float64
	ErrorCount int
	Resource   float64
	Progress   float64
	CreatedAt  time.Time
}

// TaskRun records one completed execution attempt.
type TaskRun struct {
	ID         string
	ProjectID  string
	TaskID     string
	AgentID    string
	Status     string
	Output     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Feedback records an operator correcting a decision, as trainer input.
type Feedback struct {
	ID        string
	AgentID   string
	Original  string
	Corrected string
	Context   string // Heuristic snapshot as JSON
	CreatedAt time.Time
}

// Store defines the persistence interface for the decision and run history.
type Store interface {
	SaveDecision(ctx context.Context, d *Decision) error
	ListDecisions(ctx context.Context, limit int) ([]*Decision, error)

	SaveTaskRun(ctx context.Context, r *TaskRun) error
	ListTaskRuns(ctx context.Context, projectID string) ([]*TaskRun, error)

	SaveFeedback(ctx context.Context, f *Feedback) error
	ListFeedback(ctx context.Context) ([]*Feedback, error)

	// Lifecycle
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed store at the given path.
// Creates parent directories if needed. Enables WAL mode, foreign keys, and busy timeout.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create parent directories: %w", err)
	}

	// Note: modernc.org/sqlite doesn't support _foreign_keys in connection string
	connStr := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return newStore(ctx, db)
}

// NewMemoryStore creates an in-memory SQLite store for testing.
// Uses a shared cache so multiple connections see the same database.
func NewMemoryStore(ctx context.Context) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", "file::memory:?mode=memory&cache=shared")
	if err != nil {
		return nil, fmt.Errorf("failed to open memory database: %w", err)
	}

	return newStore(ctx, db)
}

func newStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	// Enable foreign keys via PRAGMA (required for modernc.org/sqlite)
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// One connection for writes, one spare for overlapping reads
	db.SetMaxOpenConns(2)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
