// Package database holds the run audit trail. Every user-triggered criterion
// run is recorded so reviewers can see who produced which result file.
package database

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// AuditDB wraps the sqlite connection of the audit trail. Writes are
// serialized: runs are few and human-triggered, contention is not a concern.
type AuditDB struct {
	conn *sql.DB
	mu   sync.Mutex
}

// AuditEntry is one recorded run action.
type AuditEntry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	Note      string    `json:"note"`
}

// NewAuditDB opens (and if needed initializes) the audit trail database.
func NewAuditDB(path string) (*AuditDB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}

	db := &AuditDB{conn: conn}
	if err := db.createSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the underlying connection.
func (db *AuditDB) Close() error {
	return db.conn.Close()
}

func (db *AuditDB) createSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		username TEXT NOT NULL,
		action TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_audit_log_timestamp ON audit_log(timestamp);
	CREATE INDEX IF NOT EXISTS idx_audit_log_username ON audit_log(username);
	`
	if _, err := db.conn.Exec(query); err != nil {
		return fmt.Errorf("failed to create audit log table: %w", err)
	}
	return nil
}

// Log appends one entry to the trail. An empty username is recorded as
// "unknown" rather than rejected: the trail must never block a run.
func (db *AuditDB) Log(username, action, note string) error {
	if username == "" {
		username = "unknown"
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.Exec(
		`INSERT INTO audit_log (timestamp, username, action, note) VALUES (?, ?, ?, ?)`,
		time.Now().UTC(), username, action, note,
	)
	if err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (db *AuditDB) Recent(limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.Query(
		`SELECT id, timestamp, username, action, note
		 FROM audit_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Username, &e.Action, &e.Note); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	return entries, nil
}
