// Package history keeps evaluated decisions in a SQLite database so
// the server can list and fetch past results without rereading record
// files.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/steelyard-dev/steelyard/internal/models"
)

// ErrNotFound is returned when a decision ID has no row.
var ErrNotFound = errors.New("decision not found")

const schema = `
CREATE TABLE IF NOT EXISTS decisions (
    id            TEXT PRIMARY KEY,
    policy_name   TEXT NOT NULL DEFAULT '',
    facts_name    TEXT NOT NULL DEFAULT '',
    best          TEXT NOT NULL DEFAULT '',
    evaluated_at  INTEGER NOT NULL,
    payload       TEXT NOT NULL
);
`

const schemaIndex = `
CREATE INDEX IF NOT EXISTS idx_decisions_evaluated_at
ON decisions(evaluated_at);
`

// Config contains configuration for the history database.
type Config struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultConfig returns the default history configuration.
func DefaultConfig(path string) *Config {
	return &Config{
		Path:         path,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// History is a SQLite-backed log of evaluated decisions.
type History struct {
	db     *sql.DB
	logger *slog.Logger
}

// Entry is a summary row, returned by List without the full payload.
type Entry struct {
	ID          string    `json:"id"`
	PolicyName  string    `json:"policy_name,omitempty"`
	FactsName   string    `json:"facts_name,omitempty"`
	Best        string    `json:"best"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// Open opens or creates the history database and applies the schema.
func Open(cfg *Config) (*History, error) {
	if cfg == nil {
		cfg = DefaultConfig("steelyard.db")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	// A shared in-memory database exists per connection; more than one
	// connection would see different databases.
	if cfg.Path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	h := &History{
		db:     db,
		logger: slog.Default().With("component", "history"),
	}

	if err := h.initialize(cfg); err != nil {
		db.Close()
		return nil, err
	}

	h.logger.Debug("history database ready", "path", cfg.Path, "wal_mode", cfg.WALMode)
	return h, nil
}

func (h *History) initialize(cfg *Config) error {
	if cfg.WALMode {
		if _, err := h.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("enabling WAL mode: %w", err)
		}
	}
	if cfg.BusyTimeout > 0 {
		if _, err := h.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", cfg.BusyTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("setting busy timeout: %w", err)
		}
	}
	if _, err := h.db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	if _, err := h.db.Exec(schemaIndex); err != nil {
		return fmt.Errorf("creating index: %w", err)
	}
	return nil
}

// Record persists a decision. A missing ID or timestamp is filled in
// before writing; re-recording an existing ID replaces the row.
func (h *History) Record(ctx context.Context, d *models.Decision) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.EvaluatedAt.IsZero() {
		d.EvaluatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshaling decision %s: %w", d.ID, err)
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO decisions
		(id, policy_name, facts_name, best, evaluated_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.PolicyName, d.FactsName, d.Best, d.EvaluatedAt.UnixNano(), string(payload),
	)
	if err != nil {
		return fmt.Errorf("recording decision %s: %w", d.ID, err)
	}
	return nil
}

// Get returns one decision by ID.
func (h *History) Get(ctx context.Context, id string) (*models.Decision, error) {
	var payload string
	err := h.db.QueryRowContext(ctx,
		"SELECT payload FROM decisions WHERE id = ?", id,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("decision %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading decision %s: %w", id, err)
	}

	var d models.Decision
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		return nil, fmt.Errorf("parsing decision %s: %w", id, err)
	}
	return &d, nil
}

// List returns summary entries, newest first. A non-positive limit
// returns up to 100 entries.
func (h *History) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, policy_name, facts_name, best, evaluated_at
		FROM decisions
		ORDER BY evaluated_at DESC, id
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing decisions: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var ns int64
		if err := rows.Scan(&e.ID, &e.PolicyName, &e.FactsName, &e.Best, &ns); err != nil {
			return nil, fmt.Errorf("scanning decision row: %w", err)
		}
		e.EvaluatedAt = time.Unix(0, ns).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing decisions: %w", err)
	}
	return entries, nil
}

// Count returns the total number of recorded decisions.
func (h *History) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := h.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM decisions").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting decisions: %w", err)
	}
	return count, nil
}

// DeleteOlderThan removes decisions evaluated before the cutoff and
// returns how many rows were deleted.
func (h *History) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := h.db.ExecContext(ctx,
		"DELETE FROM decisions WHERE evaluated_at < ?", cutoff.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old decisions: %w", err)
	}
	return res.RowsAffected()
}

// TrimToNewest keeps only the newest max decisions and returns how many
// rows were deleted.
func (h *History) TrimToNewest(ctx context.Context, max int64) (int64, error) {
	if max <= 0 {
		return 0, nil
	}
	res, err := h.db.ExecContext(ctx, `
		DELETE FROM decisions WHERE id IN (
			SELECT id FROM decisions
			ORDER BY evaluated_at DESC, id
			LIMIT -1 OFFSET ?
		)`, max,
	)
	if err != nil {
		return 0, fmt.Errorf("trimming decisions: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the underlying database.
func (h *History) Close() error {
	return h.db.Close()
}
