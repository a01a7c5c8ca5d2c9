package remote

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"mercator-hq/nlpolicy/internal/textutil"
	"mercator-hq/nlpolicy/pkg/feasibility"
	"mercator-hq/nlpolicy/pkg/providers"
	"mercator-hq/nlpolicy/pkg/rule"
	rerrors "mercator-hq/nlpolicy/pkg/rule/errors"
)

// Options configures a Parser.
type Options struct {
	// Semantic supplies the field catalog embedded in the prompt. Defaults to
	// feasibility.DefaultSemanticMap.
	Semantic *feasibility.SemanticMap

	// CacheSize enables an LRU cache of compiled rules keyed by normalized
	// text. Zero disables caching.
	CacheSize int

	Logger *slog.Logger
}

// Parser compiles policy text with a remote language model. One Parse makes
// at most one Generate call and never retries.
type Parser struct {
	gen         providers.Generator
	instruction string
	cache       *lru.Cache[string, *rule.PolicyRule]
	logger      *slog.Logger
}

// New creates a parser around gen.
func New(gen providers.Generator, opts Options) (*Parser, error) {
	if gen == nil {
		return nil, errors.New("remote parser requires a generator")
	}
	if opts.Semantic == nil {
		opts.Semantic = feasibility.DefaultSemanticMap()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default().With("component", "parser.remote")
	}

	p := &Parser{
		gen:         gen,
		instruction: SystemInstruction(opts.Semantic.Fields()),
		logger:      opts.Logger,
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, *rule.PolicyRule](opts.CacheSize)
		if err != nil {
			return nil, err
		}
		p.cache = cache
	}
	return p, nil
}

// Parse sends text to the model and coerces the reply into a rule. Failures
// are *ParseFailure. Coercion notes are logged at debug level and do not
// fail the parse.
func (p *Parser) Parse(ctx context.Context, text string) (*rule.PolicyRule, error) {
	key := cacheKey(text)
	if p.cache != nil {
		if cached, ok := p.cache.Get(key); ok {
			p.logger.Debug("remote parse cache hit")
			return cached.Clone(), nil
		}
	}

	raw, err := p.gen.Generate(ctx, p.instruction, UserPrompt(text))
	if err != nil {
		return nil, &ParseFailure{Stage: StageGenerate, Cause: err}
	}

	r, notes, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if notes.HasErrors() {
		p.logger.Debug("coerced remote reply", "notes", notes.Messages())
	}

	if p.cache != nil {
		p.cache.Add(key, r.Clone())
	}
	return r, nil
}

// Instruction returns the system instruction sent with every request.
func (p *Parser) Instruction() string {
	return p.instruction
}

// decode reduces a model reply to a coerced rule.
func decode(raw string) (*rule.PolicyRule, *rerrors.ErrorList, error) {
	span, err := extractJSON(raw)
	if err != nil {
		return nil, nil, &ParseFailure{Stage: StageExtract, Raw: raw, Cause: err}
	}
	obj, err := decodeObject(span)
	if err != nil {
		return nil, nil, &ParseFailure{Stage: StageDecode, Raw: raw, Cause: err}
	}
	r, notes := rule.Coerce(obj)
	return r, notes, nil
}

func cacheKey(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(textutil.NormalizeDigits(text))), " ")
}
