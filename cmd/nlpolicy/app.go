package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/nlpolicy/pkg/compiler"
	"mercator-hq/nlpolicy/pkg/config"
	"mercator-hq/nlpolicy/pkg/feasibility"
	"mercator-hq/nlpolicy/pkg/history"
	"mercator-hq/nlpolicy/pkg/parser/remote"
	"mercator-hq/nlpolicy/pkg/probe"
	"mercator-hq/nlpolicy/pkg/providerfactory"
	"mercator-hq/nlpolicy/pkg/providers"
	"mercator-hq/nlpolicy/pkg/schema"
	"mercator-hq/nlpolicy/pkg/telemetry/metrics"
)

// appOptions selects which collaborators a command needs.
type appOptions struct {
	// Offline skips the remote generator even when one is configured.
	Offline bool

	// History opens the compile-history store when it is enabled.
	History bool
}

// app holds the wired collaborators of one command run.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	schema   *schema.Introspector
	analyzer *feasibility.Analyzer
	compiler *compiler.Compiler
	metrics  *metrics.Collector
	probe    *probe.SQLProbe
	history  *history.Store
	closers  []io.Closer
}

func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	a := &app{
		cfg:     cfg,
		logger:  slog.Default().With("component", "nlpolicy"),
		metrics: metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry()),
	}

	a.schema = schema.New(schema.FileSource{Path: cfg.Schema.Path}, schema.WithLogger(a.logger))
	if err := a.schema.Load(ctx); err != nil {
		// an empty catalog is installed; every field will be reported missing
		a.logger.Warn("schema unavailable, feasibility will report every field as missing",
			"path", cfg.Schema.Path, "error", err)
	}
	a.metrics.SetSchemaModels(len(a.schema.Catalog().Models))

	analyzerOpts := feasibility.Options{
		ProbeConcurrency: cfg.Analyzer.ProbeConcurrency,
		Logger:           a.logger.With("component", "feasibility"),
	}
	if cfg.Probe.Enabled() {
		p, err := probe.Open(ctx, probe.Config{
			Driver:       cfg.Probe.Driver,
			DSN:          cfg.Probe.DSN,
			ScopeField:   cfg.Probe.ScopeField,
			Timeout:      cfg.Probe.Timeout,
			MaxOpenConns: cfg.Probe.MaxOpenConns,
		}, a.schema)
		if err != nil {
			return nil, fmt.Errorf("failed to open probe database: %w", err)
		}
		a.probe = p
		a.closers = append(a.closers, p)
		analyzerOpts.Probe = p
	}
	a.analyzer = feasibility.NewAnalyzer(a.schema, analyzerOpts)

	compilerOpts := compiler.Options{
		Analyzer: a.analyzer,
		Observer: a.metrics,
		Logger:   a.logger.With("component", "compiler"),
	}

	if !opts.Offline && cfg.Generator.Enabled() {
		gen, err := providerfactory.NewGenerator(ctx, providers.Config{
			Name:        cfg.Generator.Provider,
			Type:        cfg.Generator.Provider,
			BaseURL:     cfg.Generator.BaseURL,
			APIKey:      cfg.Generator.APIKey,
			Model:       cfg.Generator.Model,
			Temperature: cfg.Generator.Temperature,
			MaxTokens:   cfg.Generator.MaxTokens,
			Timeout:     cfg.Generator.Timeout,
			MaxRetries:  0,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, gen)

		rp, err := remote.New(gen, remote.Options{
			Semantic:  a.analyzer.Semantic(),
			CacheSize: cfg.Cache.Size,
			Logger:    a.logger.With("component", "parser.remote"),
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		compilerOpts.Remote = rp
	}

	if opts.History && cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.history = store
		a.closers = append(a.closers, store)
		compilerOpts.Recorder = store
	}

	a.compiler = compiler.New(compilerOpts)
	return a, nil
}

// Close releases every opened resource.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
