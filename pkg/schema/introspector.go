package schema

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// Source supplies schema text.
type Source interface {
	ReadSchema(ctx context.Context) (string, error)
	String() string
}

// FileSource reads the schema from a file on each load.
type FileSource struct {
	Path string
}

// ReadSchema implements Source.
func (s FileSource) ReadSchema(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s FileSource) String() string { return s.Path }

// TextSource serves a fixed schema string.
type TextSource string

// ReadSchema implements Source.
func (s TextSource) ReadSchema(ctx context.Context) (string, error) { return string(s), nil }

func (s TextSource) String() string { return "<inline>" }

// LoadError reports a schema source that could not be read. The introspector
// installs an empty catalog when it occurs, so every lookup misses.
type LoadError struct {
	Source string
	Cause  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("schema load degraded (source %s): %v", e.Source, e.Cause)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Introspector owns the process's schema catalog. The catalog is built on
// the first Load or Catalog call and replaced only by Reload.
type Introspector struct {
	source  Source
	logger  *slog.Logger
	catalog atomic.Pointer[Catalog]

	// serializes loads; readers never take it
	loadMu sync.Mutex
}

// Option configures an Introspector.
type Option func(*Introspector)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Introspector) {
		i.logger = logger
	}
}

// New creates an introspector that reads from src. Nothing is read until the
// first Load, Reload or Catalog call.
func New(src Source, opts ...Option) *Introspector {
	i := &Introspector{
		source: src,
		logger: slog.Default().With("component", "schema"),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// NewFromText parses text immediately and returns an introspector over it.
func NewFromText(text string, opts ...Option) *Introspector {
	i := New(TextSource(text), opts...)
	i.catalog.Store(Parse(text))
	return i
}

// Load builds the catalog if it has not been built yet.
func (i *Introspector) Load(ctx context.Context) error {
	if i.catalog.Load() != nil {
		return nil
	}
	i.loadMu.Lock()
	defer i.loadMu.Unlock()
	if i.catalog.Load() != nil {
		return nil
	}
	return i.reloadLocked(ctx)
}

// Reload re-reads the source and swaps in a new catalog. On failure the
// catalog is replaced by an empty one and a *LoadError is returned.
func (i *Introspector) Reload(ctx context.Context) error {
	i.loadMu.Lock()
	defer i.loadMu.Unlock()
	return i.reloadLocked(ctx)
}

func (i *Introspector) reloadLocked(ctx context.Context) error {
	if i.source == nil {
		i.catalog.Store(Empty())
		err := &LoadError{Source: "<none>", Cause: fmt.Errorf("no schema source configured")}
		i.logger.Warn("schema load degraded", "error", err)
		return err
	}
	text, err := i.source.ReadSchema(ctx)
	if err != nil {
		i.catalog.Store(Empty())
		lerr := &LoadError{Source: i.source.String(), Cause: err}
		i.logger.Warn("schema load degraded, using empty catalog",
			"source", i.source.String(),
			"error", err,
		)
		return lerr
	}

	c := Parse(text)
	i.catalog.Store(c)
	i.logger.Info("schema loaded",
		"source", i.source.String(),
		"models", len(c.Models),
		"enums", len(c.Enums),
		"fields", len(c.AvailableFields),
	)
	return nil
}

// Catalog returns the current catalog, loading it on first use. It never
// returns nil.
func (i *Introspector) Catalog() *Catalog {
	if c := i.catalog.Load(); c != nil {
		return c
	}
	_ = i.Load(context.Background())
	return i.catalog.Load()
}

// FindField resolves "Model.field" against the current catalog.
func (i *Introspector) FindField(path string) FieldLookup {
	return i.Catalog().FindField(path)
}

// SuggestSimilarFields returns fields similar to path from the current catalog.
func (i *Introspector) SuggestSimilarFields(path string) []string {
	return i.Catalog().SuggestSimilarFields(path)
}

// FieldsForCategory returns the fields of the category's models.
func (i *Introspector) FieldsForCategory(category string) []string {
	return i.Catalog().FieldsForCategory(category)
}
