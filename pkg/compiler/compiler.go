package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mercator-hq/nlpolicy/pkg/feasibility"
	"mercator-hq/nlpolicy/pkg/parser/dictionary"
	"mercator-hq/nlpolicy/pkg/parser/remote"
	"mercator-hq/nlpolicy/pkg/postprocess"
	"mercator-hq/nlpolicy/pkg/providers"
	"mercator-hq/nlpolicy/pkg/rule"
	"mercator-hq/nlpolicy/pkg/telemetry/logging"
)

// Parser names reported in Result.Parser.
const (
	ParserRemote     = "remote"
	ParserDictionary = "dictionary"
)

// RemoteParser is the primary, model-backed parser.
type RemoteParser interface {
	Parse(ctx context.Context, text string) (*rule.PolicyRule, error)
}

// Observer receives compile events. *metrics.Collector implements it.
type Observer interface {
	ObserveCompile(parser string, understood bool, d time.Duration)
	ObserveParseFailure(stage string)
	ObserveFallback()
	ObserveFeasibility(readiness string, missing int)
}

// Recorder persists compile results. *history.Store implements it.
type Recorder interface {
	Record(ctx context.Context, res *Result) error
}

// Options configures a Compiler. Every collaborator except Dictionary is
// optional.
type Options struct {
	// Remote is the primary parser. Nil compiles everything offline.
	Remote RemoteParser

	// Dictionary is the fallback parser. Defaults to dictionary.New().
	Dictionary *dictionary.Parser

	// PostProcessor attaches dynamic queries. Defaults to postprocess.New.
	PostProcessor *postprocess.Processor

	// Analyzer checks the rule against the schema. Nil skips feasibility.
	Analyzer *feasibility.Analyzer

	Observer Observer
	Recorder Recorder
	Logger   *slog.Logger
}

// Compiler turns policy text into a rule and its feasibility report.
// It is safe for concurrent use when its collaborators are.
type Compiler struct {
	remote   RemoteParser
	dict     *dictionary.Parser
	post     *postprocess.Processor
	analyzer *feasibility.Analyzer
	observer Observer
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a compiler from opts.
func New(opts Options) *Compiler {
	c := &Compiler{
		remote:   opts.Remote,
		dict:     opts.Dictionary,
		post:     opts.PostProcessor,
		analyzer: opts.Analyzer,
		observer: opts.Observer,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		now:      time.Now,
	}
	if c.logger == nil {
		c.logger = slog.Default().With("component", "compiler")
	}
	if c.dict == nil {
		c.dict = dictionary.New()
	}
	if c.post == nil {
		c.post = postprocess.New(c.logger)
	}
	if c.observer == nil {
		c.observer = nopObserver{}
	}
	return c
}

// Compile parses text, attaches dynamic queries, validates the rule and,
// when an analyzer is configured, checks feasibility for scopeID.
//
// A remote parse failure falls back to the dictionary parser and is
// reported in Result.FallbackReason. Compile returns an error only for
// text outside the accepted length or a done context.
func (c *Compiler) Compile(ctx context.Context, text, scopeID string) (*Result, error) {
	if err := rule.CheckText(text); err != nil {
		return nil, err
	}

	start := c.now()
	res := &Result{
		ID:         uuid.NewString(),
		Text:       text,
		ScopeID:    scopeID,
		CompiledAt: start.UTC(),
	}
	ctx = logging.WithCompileID(ctx, res.ID)
	logger := logging.FromContext(ctx, c.logger)

	parsed, err := c.parse(ctx, logger, text, res)
	if err != nil {
		return nil, err
	}

	res.Rule = c.post.Process(text, parsed)

	if issues := rule.Validate(res.Rule); issues.HasErrors() {
		res.Issues = issues.Messages()
		logger.Debug("compiled rule has validation issues", "count", issues.Count())
	}

	if c.analyzer != nil {
		res.Feasibility = c.analyzer.Analyze(ctx, res.Rule, scopeID)
		c.observer.ObserveFeasibility(string(res.Feasibility.Summary.ExecutionReadiness), len(res.Feasibility.MissingFields))
	}

	res.Duration = c.now().Sub(start)
	c.observer.ObserveCompile(res.Parser, res.Rule.Understood, res.Duration)

	logger.Info("policy compiled",
		"parser", res.Parser,
		"understood", res.Rule.Understood,
		"duration", res.Duration,
	)

	if c.recorder != nil {
		if err := c.recorder.Record(ctx, res); err != nil {
			logger.Warn("failed to record compile history", "error", err)
		}
	}
	return res, nil
}

func (c *Compiler) parse(ctx context.Context, logger *slog.Logger, text string, res *Result) (*rule.PolicyRule, error) {
	if c.remote == nil {
		res.Parser = ParserDictionary
		return c.dict.Parse(text), nil
	}

	r, err := c.remote.Parse(ctx, text)
	if err == nil {
		res.Parser = ParserRemote
		return r, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("compile %s: %w", res.ID, ctxErr)
	}

	stage := "unknown"
	var pf *remote.ParseFailure
	if errors.As(err, &pf) {
		stage = string(pf.Stage)
	}
	c.observer.ObserveParseFailure(stage)
	c.observer.ObserveFallback()
	logger.Warn("remote parse failed, using dictionary parser",
		"stage", stage,
		"kind", providers.Kind(err),
		"error", err,
	)

	res.Parser = ParserDictionary
	res.FallbackReason = err.Error()
	return c.dict.Parse(text), nil
}

type nopObserver struct{}

func (nopObserver) ObserveCompile(string, bool, time.Duration) {}
func (nopObserver) ObserveParseFailure(string)                 {}
func (nopObserver) ObserveFallback()                           {}
func (nopObserver) ObserveFeasibility(string, int)             {}
