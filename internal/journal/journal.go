// Package journal keeps a local record of commands issued from this machine.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/tessro/lookout/internal/core"
)

// Entry statuses.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

const schema = `
CREATE TABLE IF NOT EXISTS commands (
	id           TEXT PRIMARY KEY,
	device_uuid  TEXT NOT NULL,
	device_id    TEXT NOT NULL,
	device_model TEXT NOT NULL DEFAULT '',
	command_type TEXT NOT NULL,
	status       TEXT NOT NULL,
	error        TEXT NOT NULL DEFAULT '',
	created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_commands_created_at ON commands(created_at);
`

// Entry is one journaled command.
type Entry struct {
	ID          string           `json:"id"`
	DeviceUUID  string           `json:"device_uuid"`
	DeviceID    string           `json:"device_id"`
	DeviceModel string           `json:"device_model"`
	CommandType core.CommandType `json:"command_type"`
	Status      string           `json:"status"`
	Error       string           `json:"error,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Store is a SQLite-backed journal.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// DefaultPath returns the journal location under the user data directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "lookout", "journal.db")
}

// Open opens (creating if needed) the journal database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}

	log.Debug().Str("path", path).Msg("journal opened")
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record journals a command. sendErr is the outcome of the backend write.
func (s *Store) Record(ctx context.Context, device core.Device, cmd core.Command, sendErr error) error {
	e := Entry{
		ID:          uuid.NewString(),
		DeviceUUID:  cmd.DeviceUUID,
		DeviceID:    device.DeviceID,
		DeviceModel: device.DeviceModel,
		CommandType: cmd.CommandType,
		Status:      StatusSent,
		CreatedAt:   s.now(),
	}
	if sendErr != nil {
		e.Status = StatusFailed
		e.Error = sendErr.Error()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO commands (id, device_uuid, device_id, device_model, command_type, status, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.DeviceUUID, e.DeviceID, e.DeviceModel, string(e.CommandType), e.Status, e.Error, e.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("record command: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. deviceUUID filters by
// device when non-empty.
func (s *Store) Recent(ctx context.Context, deviceUUID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, device_uuid, device_id, device_model, command_type, status, error, created_at
		FROM commands`
	args := []any{}
	if deviceUUID != "" {
		query += ` WHERE device_uuid = ?`
		args = append(args, deviceUUID)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var cmdType string
		var created int64
		if err := rows.Scan(&e.ID, &e.DeviceUUID, &e.DeviceID, &e.DeviceModel, &cmdType, &e.Status, &e.Error, &created); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		e.CommandType = core.CommandType(cmdType)
		e.CreatedAt = time.Unix(0, created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
