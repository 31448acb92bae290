// Package store provides persistent storage for sprintbot using SQLite.
// It holds the user, project, sprint and task repositories and runs
// database migrations automatically on initialization.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the SQLite database shared by the repositories.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new Store instance with a SQLite database at the given
// directory. It creates the data directory if it does not exist and runs
// migrations. Returns an error if the database cannot be opened.
func NewStore(dataPath string) (*Store, error) {
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataPath, "sprintbot.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, path: dataPath}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// NewMemoryStore creates an in-memory Store, used by tests.
func NewMemoryStore() (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate creates necessary tables
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			phone TEXT,
			password_hash TEXT,
			role TEXT,
			telegram_username TEXT,
			deleted INTEGER DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			project_id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			description TEXT,
			start_date TEXT,
			end_date TEXT,
			status TEXT,
			user_id INTEGER REFERENCES users(user_id),
			deleted INTEGER DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS sprints (
			sprint_id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			start_date TEXT,
			end_date TEXT,
			status TEXT,
			project_id INTEGER REFERENCES projects(project_id),
			deleted INTEGER DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			task_id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT,
			status TEXT NOT NULL,
			priority TEXT,
			type TEXT,
			story_points INTEGER DEFAULT 0,
			estimated_hours REAL DEFAULT 0,
			actual_hours REAL DEFAULT 0,
			start_date TEXT,
			end_date TEXT,
			user_id INTEGER REFERENCES users(user_id),
			sprint_id INTEGER REFERENCES sprints(sprint_id),
			deleted INTEGER DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sprints_project ON sprints(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_sprint ON tasks(sprint_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status)`,
		`CREATE INDEX IF NOT EXISTS idx_users_telegram ON users(telegram_username)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Users returns the user repository.
func (s *Store) Users() *UserRepo {
	return &UserRepo{db: s.db}
}

// Projects returns the project repository.
func (s *Store) Projects() *ProjectRepo {
	return &ProjectRepo{db: s.db}
}

// Sprints returns the sprint repository.
func (s *Store) Sprints() *SprintRepo {
	return &SprintRepo{db: s.db}
}

// Tasks returns the task repository.
func (s *Store) Tasks() *TaskRepo {
	return &TaskRepo{db: s.db}
}

const dateLayout = time.RFC3339

// formatDate renders a time for storage; zero times become empty strings.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// parseDate reads a stored date; empty or malformed values yield zero times.
func parseDate(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
