// Package probe answers "does this tenant have any rows in model X" against
// a SQL database, for the feasibility analyzer's informational hasData flag.
//
// Supported drivers are "sqlite" (modernc.org/sqlite, pure Go), "sqlite3"
// (github.com/mattn/go-sqlite3, cgo builds only) and "postgres"
// (github.com/lib/pq). Queries go through sqlx so placeholders are rebound
// per driver.
package probe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"mercator-hq/nlpolicy/pkg/schema"
)

// DefaultScopeField is the model field holding the tenant identifier.
const DefaultScopeField = "companyId"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func init() {
	// modernc registers as "sqlite", which sqlx does not know.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// ErrUnknownModel is returned for models absent from the catalog.
var ErrUnknownModel = errors.New("unknown model")

// CatalogProvider exposes the current schema catalog.
type CatalogProvider interface {
	Catalog() *schema.Catalog
}

// Config configures Open.
type Config struct {
	Driver string
	DSN    string

	// ScopeField is the model field compared with the scope ID. Models
	// without it are probed unscoped.
	ScopeField string

	// Timeout bounds each probe query. Zero means no extra bound.
	Timeout time.Duration

	MaxOpenConns int
}

// SQLProbe implements feasibility.Probe.
type SQLProbe struct {
	db         *sqlx.DB
	catalogs   CatalogProvider
	scopeField string
	timeout    time.Duration
	logger     *slog.Logger
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, cfg Config, catalogs CatalogProvider) (*SQLProbe, error) {
	switch cfg.Driver {
	case "sqlite", "sqlite3", "postgres":
	default:
		return nil, fmt.Errorf("unsupported probe driver %q (supported: sqlite, sqlite3, postgres)", cfg.Driver)
	}
	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Driver, err)
	}
	return New(db, catalogs, cfg), nil
}

// New wraps an existing connection. Only ScopeField and Timeout are read
// from cfg.
func New(db *sqlx.DB, catalogs CatalogProvider, cfg Config) *SQLProbe {
	if cfg.ScopeField == "" {
		cfg.ScopeField = DefaultScopeField
	}
	return &SQLProbe{
		db:         db,
		catalogs:   catalogs,
		scopeField: cfg.ScopeField,
		timeout:    cfg.Timeout,
		logger:     slog.Default().With("component", "probe", "driver", db.DriverName()),
	}
}

// HasData reports whether any row of model exists for scopeID. An empty
// scopeID probes the whole table.
func (p *SQLProbe) HasData(ctx context.Context, model, scopeID string) (bool, error) {
	query, args, err := p.query(model, scopeID)
	if err != nil {
		return false, err
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	var one int
	err = p.db.GetContext(ctx, &one, query, args...)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		p.logger.Debug("probe query failed", "model", model, "error", err)
		return false, fmt.Errorf("probe %s: %w", model, err)
	}
	return true, nil
}

// query builds the existence query for model.
func (p *SQLProbe) query(model, scopeID string) (string, []any, error) {
	m, ok := p.catalogs.Catalog().Model(model)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrUnknownModel, model)
	}
	if !identRe.MatchString(m.TableName) {
		return "", nil, fmt.Errorf("model %s has unsafe table name %q", model, m.TableName)
	}

	q := fmt.Sprintf(`SELECT 1 FROM "%s"`, m.TableName)
	var args []any
	if f, ok := m.Field(p.scopeField); ok && scopeID != "" {
		col := f.Column()
		if !identRe.MatchString(col) {
			return "", nil, fmt.Errorf("model %s has unsafe column name %q", model, col)
		}
		q += fmt.Sprintf(` WHERE "%s" = ?`, col)
		args = append(args, scopeID)
	}
	q += " LIMIT 1"
	return p.db.Rebind(q), args, nil
}

// Ping checks the database connection.
func (p *SQLProbe) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the database connection.
func (p *SQLProbe) Close() error {
	return p.db.Close()
}
