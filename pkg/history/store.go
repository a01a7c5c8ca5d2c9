package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver

	"mercator-hq/nlpolicy/pkg/compiler"
)

// ErrNotFound is returned by Get for an unknown compile ID.
var ErrNotFound = errors.New("compile record not found")

// Entry is one stored compile.
type Entry struct {
	ID             string        `db:"id" json:"id"`
	CompiledAt     time.Time     `db:"-" json:"compiledAt"`
	Text           string        `db:"text" json:"text"`
	ScopeID        string        `db:"scope_id" json:"scopeId,omitempty"`
	Parser         string        `db:"parser" json:"parser"`
	Understood     bool          `db:"understood" json:"understood"`
	Readiness      string        `db:"readiness" json:"readiness,omitempty"`
	FallbackReason string        `db:"fallback_reason" json:"fallbackReason,omitempty"`
	Rule           string        `db:"rule_json" json:"rule"`
	Feasibility    string        `db:"feasibility_json" json:"feasibility,omitempty"`
	Duration       time.Duration `db:"-" json:"duration"`

	CompiledAtMillis int64 `db:"compiled_at" json:"-"`
	DurationMillis   int64 `db:"duration_ms" json:"-"`
}

// Query filters List. Zero values match everything.
type Query struct {
	ScopeID string
	Parser  string
	Since   time.Time

	// Limit caps the number of entries. Defaults to 100.
	Limit int
}

// Store persists compile results in SQLite. It implements compiler.Recorder.
type Store struct {
	db     *sqlx.DB
	path   string
	logger *slog.Logger
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history path cannot be empty")
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create history directory: %w", err)
			}
		}
	}

	db, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)

	s := &Store{
		db:     db,
		path:   path,
		logger: slog.Default().With("component", "history"),
	}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, SchemaVersion)
	return err
}

// Record stores res.
func (s *Store) Record(ctx context.Context, res *compiler.Result) error {
	ruleJSON, err := json.Marshal(res.Rule)
	if err != nil {
		return fmt.Errorf("failed to encode rule: %w", err)
	}
	var feasJSON []byte
	if res.Feasibility != nil {
		if feasJSON, err = json.Marshal(res.Feasibility); err != nil {
			return fmt.Errorf("failed to encode feasibility: %w", err)
		}
	}

	understood := res.Rule != nil && res.Rule.Understood
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO compiles (
			id, compiled_at, text, scope_id, parser, understood,
			readiness, fallback_reason, rule_json, feasibility_json, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, res.CompiledAt.UnixMilli(), res.Text, res.ScopeID, res.Parser, understood,
		string(res.Readiness()), res.FallbackReason, string(ruleJSON), string(feasJSON), res.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record compile %s: %w", res.ID, err)
	}
	return nil
}

// Get returns the entry with the given compile ID.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	var e Entry
	err := s.db.GetContext(ctx, &e, `SELECT * FROM compiles WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load compile %s: %w", id, err)
	}
	e.fill()
	return &e, nil
}

// List returns the newest entries matching q.
func (s *Store) List(ctx context.Context, q Query) ([]*Entry, error) {
	var (
		where []string
		args  []any
	)
	if q.ScopeID != "" {
		where = append(where, "scope_id = ?")
		args = append(args, q.ScopeID)
	}
	if q.Parser != "" {
		where = append(where, "parser = ?")
		args = append(args, q.Parser)
	}
	if !q.Since.IsZero() {
		where = append(where, "compiled_at >= ?")
		args = append(args, q.Since.UnixMilli())
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}

	query := "SELECT * FROM compiles"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY compiled_at DESC, id LIMIT ?"
	args = append(args, limit)

	var entries []*Entry
	if err := s.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list compiles: %w", err)
	}
	for _, e := range entries {
		e.fill()
	}
	return entries, nil
}

// Prune deletes entries compiled before cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM compiles WHERE compiled_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune compiles: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM compiles`); err != nil {
		return 0, fmt.Errorf("failed to count compiles: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (e *Entry) fill() {
	e.CompiledAt = time.UnixMilli(e.CompiledAtMillis).UTC()
	e.Duration = time.Duration(e.DurationMillis) * time.Millisecond
}
