package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry is one recorded restore: the snapshot that was downloaded and the
// outcome of loading it into a database.
type Entry struct {
	ID           int64
	Timestamp    string
	SnapshotKey  string
	SizeBytes    int64
	DurationMs   int64
	DatabaseName string
	Outcome      string
	Message      string
}

type Manager struct {
	db *sql.DB
}

func NewManager(dbPath string) (*Manager, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	m := &Manager{db: db}
	if err := m.initSchema(); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Manager) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS restore_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		snapshot_key TEXT NOT NULL,
		size_bytes INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		database_name TEXT NOT NULL,
		outcome TEXT NOT NULL,
		message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_restore_history_timestamp ON restore_history(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_restore_history_snapshot_key ON restore_history(snapshot_key);
	`

	_, err := m.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return nil
}

func (m *Manager) Save(entry Entry) error {
	query := `
		INSERT INTO restore_history (
			timestamp, snapshot_key, size_bytes, duration_ms, database_name, outcome, message
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	timestampStr := entry.Timestamp
	if timestampStr == "" {
		timestampStr = time.Now().Local().Format("2006-01-02 15:04:05")
	}

	_, err := m.db.Exec(query,
		timestampStr,
		entry.SnapshotKey,
		entry.SizeBytes,
		entry.DurationMs,
		entry.DatabaseName,
		entry.Outcome,
		entry.Message,
	)

	if err != nil {
		return fmt.Errorf("failed to save history entry: %w", err)
	}

	return nil
}

func (m *Manager) Load() ([]Entry, error) {
	query := `
		SELECT id, timestamp, snapshot_key, size_bytes, duration_ms, database_name, outcome, COALESCE(message, '')
		FROM restore_history
		ORDER BY timestamp DESC
	`

	rows, err := m.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.SnapshotKey, &e.SizeBytes, &e.DurationMs, &e.DatabaseName, &e.Outcome, &e.Message); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (m *Manager) Clear() error {
	_, err := m.db.Exec("DELETE FROM restore_history")
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (m *Manager) Delete(id int64) error {
	_, err := m.db.Exec("DELETE FROM restore_history WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}
	return nil
}

func (m *Manager) GetCount() (int, error) {
	var count int
	err := m.db.QueryRow("SELECT COUNT(*) FROM restore_history").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get history count: %w", err)
	}
	return count, nil
}

func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
