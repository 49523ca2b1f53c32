package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ActivityAction is the kind of user action recorded in the activity log.
type ActivityAction string

const (
	ActionLogin    ActivityAction = "login"
	ActionLogout   ActivityAction = "logout"
	ActionUpload   ActivityAction = "upload"
	ActionReset    ActivityAction = "reset"
	ActionDownload ActivityAction = "download"
)

// ActivityEntry is one activity log row.
type ActivityEntry struct {
	ID        string         `json:"id"`
	Action    ActivityAction `json:"action"`
	Username  string         `json:"username,omitempty"`
	Dataset   string         `json:"dataset,omitempty"`
	Rows      int            `json:"rows,omitempty"`
	IPAddress string         `json:"ipAddress,omitempty"`
	UserAgent string         `json:"userAgent,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ActivityLog records and lists user actions.
type ActivityLog interface {
	Record(ctx context.Context, e ActivityEntry) error
	Recent(ctx context.Context, limit int) ([]ActivityEntry, error)
}

// fillEntry sets the id, timestamp and request metadata when missing.
func fillEntry(ctx context.Context, e ActivityEntry) ActivityEntry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.IPAddress == "" {
		e.IPAddress = GetIPAddressFromContext(ctx)
	}
	if e.UserAgent == "" {
		e.UserAgent = GetUserAgentFromContext(ctx)
	}
	return e
}

// DBTX is the subset of pgx used by PGActivityLog. *pgxpool.Pool, *pgx.Conn
// and pgx.Tx all satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const createActivityTable = `
CREATE TABLE IF NOT EXISTS activity_log (
	id          UUID PRIMARY KEY,
	action      TEXT NOT NULL,
	username    TEXT NOT NULL DEFAULT '',
	dataset     TEXT NOT NULL DEFAULT '',
	row_count   INTEGER NOT NULL DEFAULT 0,
	ip_address  TEXT NOT NULL DEFAULT '',
	user_agent  TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS activity_log_created_at_idx ON activity_log (created_at DESC);`

const insertActivity = `
INSERT INTO activity_log (id, action, username, dataset, row_count, ip_address, user_agent, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const selectRecentActivity = `
SELECT id::text, action, username, dataset, row_count, ip_address, user_agent, created_at
FROM activity_log
ORDER BY created_at DESC
LIMIT $1`

// PGActivityLog stores activity in PostgreSQL.
type PGActivityLog struct {
	db DBTX
}

// NewPGActivityLog ensures the activity_log table exists.
func NewPGActivityLog(ctx context.Context, db DBTX) (*PGActivityLog, error) {
	if _, err := db.Exec(ctx, createActivityTable); err != nil {
		return nil, fmt.Errorf("create activity_log: %w", err)
	}
	return &PGActivityLog{db: db}, nil
}

// Record inserts an entry.
func (l *PGActivityLog) Record(ctx context.Context, e ActivityEntry) error {
	e = fillEntry(ctx, e)
	_, err := l.db.Exec(ctx, insertActivity,
		e.ID, string(e.Action), e.Username, e.Dataset, e.Rows,
		e.IPAddress, e.UserAgent, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (l *PGActivityLog) Recent(ctx context.Context, limit int) ([]ActivityEntry, error) {
	rows, err := l.db.Query(ctx, selectRecentActivity, limit)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ActivityEntry, error) {
		var e ActivityEntry
		var action string
		err := row.Scan(&e.ID, &action, &e.Username, &e.Dataset, &e.Rows,
			&e.IPAddress, &e.UserAgent, &e.CreatedAt)
		e.Action = ActivityAction(action)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan activity: %w", err)
	}
	return entries, nil
}

// DefaultActivityCapacity is the number of entries kept by MemoryActivityLog.
const DefaultActivityCapacity = 200

// MemoryActivityLog keeps the most recent entries in memory. Used when no
// database is configured.
type MemoryActivityLog struct {
	mu      sync.Mutex
	entries []ActivityEntry
	limit   int
}

// NewMemoryActivityLog creates an in-memory log holding at most capacity entries.
func NewMemoryActivityLog(capacity int) *MemoryActivityLog {
	if capacity <= 0 {
		capacity = DefaultActivityCapacity
	}
	return &MemoryActivityLog{limit: capacity}
}

// Record appends an entry, dropping the oldest when full.
func (l *MemoryActivityLog) Record(ctx context.Context, e ActivityEntry) error {
	e = fillEntry(ctx, e)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	if over := len(l.entries) - l.limit; over > 0 {
		l.entries = append(l.entries[:0:0], l.entries[over:]...)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (l *MemoryActivityLog) Recent(_ context.Context, limit int) ([]ActivityEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if limit <= 0 || limit > len(l.entries) {
		limit = len(l.entries)
	}
	out := make([]ActivityEntry, 0, limit)
	for i := len(l.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.entries[i])
	}
	return out, nil
}
