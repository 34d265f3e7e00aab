// Package state persists diagrams and collection run history in SQLite.
//
// Diagrams are stored as plain rows: nodes with their attributes and the
// relations between them. A loaded diagram holds restored nodes that carry
// no live catalog entity, so their relations are never resolved again.
package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// ErrNotFound is returned when a diagram or run does not exist.
var ErrNotFound = errors.New("not found")

var errNotOpened = errors.New("database not opened")

// RunStatus is the lifecycle state of a collection run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// Run records one collection against a diagram.
type Run struct {
	ID          string     `json:"id"`
	Diagram     string     `json:"diagram"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Nodes       int        `json:"nodes"`
	Relations   int        `json:"relations"`
	Error       string     `json:"error,omitempty"`
}

// DiagramInfo summarises a stored diagram.
type DiagramInfo struct {
	Name                string    `json:"name"`
	AttributeVisibility string    `json:"attribute_visibility"`
	Nodes               int       `json:"nodes"`
	Relations           int       `json:"relations"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// SQLiteStore is the SQLite-backed state store.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a store. A nil logger discards output.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// Open opens the database at path. Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// every connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.logger.Debug("opened state store", slog.String("path", path))
	s.db = db
	s.path = path
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the path the store was opened with.
func (s *SQLiteStore) Path() string {
	return s.path
}

func generateID() string {
	return uuid.New().String()
}
