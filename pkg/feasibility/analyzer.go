package feasibility

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"mercator-hq/nlpolicy/pkg/rule"
	"mercator-hq/nlpolicy/pkg/schema"
)

// formulaFieldRe matches dotted identifiers inside formula values.
var formulaFieldRe = regexp.MustCompile(`(?i)([a-z]+(?:\.[a-z]+)+)`)

// Probe reports whether any records of a model exist for a scope.
type Probe interface {
	HasData(ctx context.Context, model, scopeID string) (bool, error)
}

// CatalogProvider supplies the current schema catalog.
type CatalogProvider interface {
	Catalog() *schema.Catalog
}

// Options configures an Analyzer.
type Options struct {
	// Semantic is the semantic field map. Defaults to DefaultSemanticMap.
	Semantic *SemanticMap

	// Probe checks for scoped data. Nil disables data checks.
	Probe Probe

	// ProbeConcurrency bounds concurrent probe calls. Defaults to 4.
	ProbeConcurrency int

	Logger *slog.Logger
}

// Analyzer checks compiled rules against the schema catalog.
type Analyzer struct {
	catalogs    CatalogProvider
	semantic    *SemanticMap
	probe       Probe
	concurrency int
	logger      *slog.Logger
}

// NewAnalyzer creates an analyzer over the given catalog provider.
func NewAnalyzer(catalogs CatalogProvider, opts Options) *Analyzer {
	a := &Analyzer{
		catalogs:    catalogs,
		semantic:    opts.Semantic,
		probe:       opts.Probe,
		concurrency: opts.ProbeConcurrency,
		logger:      opts.Logger,
	}
	if a.semantic == nil {
		a.semantic = DefaultSemanticMap()
	}
	if a.concurrency <= 0 {
		a.concurrency = 4
	}
	if a.logger == nil {
		a.logger = slog.Default().With("component", "feasibility")
	}
	return a
}

// SupportedFields returns every semantic field path the analyzer understands.
func (a *Analyzer) SupportedFields() []string {
	return a.semantic.Paths()
}

// FieldDescription returns the description of a semantic field path.
func (a *Analyzer) FieldDescription(path string) (string, bool) {
	f, ok := a.semantic.Lookup(path)
	return f.Description, ok
}

// Semantic returns the analyzer's semantic map.
func (a *Analyzer) Semantic() *SemanticMap {
	return a.semantic
}

type probeJob struct {
	index int
	model string
}

// analysis carries the state of one Analyze call.
type analysis struct {
	catalog   *schema.Catalog
	seen      map[string]bool
	available []FieldAvailability
	missing   []MissingField
	probes    []probeJob
}

// Analyze reports whether every field r references resolves against the
// schema. Data probes only set HasData and never affect resolution.
func (a *Analyzer) Analyze(ctx context.Context, r *rule.PolicyRule, scopeID string) *Result {
	st := &analysis{
		catalog:   a.catalogs.Catalog(),
		seen:      map[string]bool{},
		available: []FieldAvailability{},
		missing:   []MissingField{},
	}

	dq := r.DynamicQuery
	for _, c := range r.Conditions {
		if name, ok := strings.CutPrefix(c.Field, rule.DynamicQueryPrefix); ok && dq != nil {
			a.resolveQueryField(st, c.Field, dq.Table, name)
			continue
		}
		a.resolve(st, c.Field, ReasonNotFound)
	}

	for _, act := range r.Actions {
		if act.ValueType != rule.ValueFormula || act.Value == nil {
			continue
		}
		for _, f := range FormulaFields(fmt.Sprint(act.Value)) {
			if st.seen[f] {
				continue
			}
			a.resolve(st, f, ReasonFormula)
		}
	}

	if dq != nil {
		if _, ok := st.catalog.Model(dq.Table); !ok {
			st.missing = append(st.missing, MissingField{
				Field:      dq.Table,
				Reason:     ReasonQueryTable,
				Suggestion: fmt.Sprintf("create model %s", dq.Table),
				Priority:   PriorityHigh,
			})
		}
		for _, w := range dq.Where {
			a.resolveQueryField(st, dq.Table+"."+w.Field, dq.Table, w.Field)
		}
	}

	a.runProbes(ctx, st, scopeID)

	res := &Result{
		AvailableFields: st.available,
		MissingFields:   st.missing,
		Recommendations: recommendations(st.missing, queryTable(dq)),
		Warnings:        []string{},
	}
	if r.ClarificationNeeded != nil && *r.ClarificationNeeded != "" {
		res.Warnings = append(res.Warnings, "policy needs clarification: "+*r.ClarificationNeeded)
	}

	total := len(r.Conditions)
	if dq != nil {
		total += len(dq.Where)
	}
	res.Summary = summarize(total, len(st.available), len(st.missing))
	if res.Summary.ExecutionReadiness == ReadinessReady && len(st.available) == 0 {
		res.Warnings = append(res.Warnings, "policy has no conditions and will apply to every employee in scope")
	}
	res.IsExecutable = res.Summary.ExecutionReadiness == ReadinessReady

	a.logger.Debug("feasibility analysis complete",
		"readiness", res.Summary.ExecutionReadiness,
		"confidence", res.Summary.ConfidenceScore,
		"available", len(st.available),
		"missing", len(st.missing),
	)
	return res
}

// addAvailable records a resolved field and queues a data check for its
// model. HasData stays false until that check succeeds.
func (st *analysis) addAvailable(ref, source string, lookup schema.FieldLookup) {
	st.available = append(st.available, FieldAvailability{
		Field:    ref,
		Source:   source,
		DataType: lookup.Field.Type,
		Exists:   true,
	})
	st.probes = append(st.probes, probeJob{index: len(st.available) - 1, model: lookup.Model.Name})
}

// resolve runs semantic map, then direct schema lookup, then reports the
// path missing.
func (a *Analyzer) resolve(st *analysis, path, reason string) {
	st.seen[path] = true

	target := path
	if sf, ok := a.semantic.Lookup(path); ok {
		target = sf.Source()
		if lookup := st.catalog.FindField(target); lookup.Found {
			st.addAvailable(path, target, lookup)
			return
		}
	}

	if lookup := st.catalog.FindField(path); lookup.Found {
		st.addAvailable(path, lookup.Model.Name+"."+lookup.Field.Name, lookup)
		return
	}

	st.missing = append(st.missing, MissingField{
		Field:      path,
		Reason:     reason,
		Suggestion: suggestion(st.catalog, target),
		Priority:   PriorityHigh,
	})
}

// resolveQueryField checks a dynamic query field directly against its table.
func (a *Analyzer) resolveQueryField(st *analysis, ref, table, field string) {
	st.seen[ref] = true

	if lookup := st.catalog.FindField(table + "." + field); lookup.Found {
		st.addAvailable(ref, lookup.Model.Name+"."+lookup.Field.Name, lookup)
		return
	}

	sugg := fmt.Sprintf("add field %s to model %s", field, table)
	if similar := st.catalog.SuggestSimilarFields(table + "." + field); len(similar) > 0 {
		sugg = "did you mean: " + strings.Join(similar, " or ")
	}
	st.missing = append(st.missing, MissingField{
		Field:      ref,
		Reason:     ReasonQueryField,
		Suggestion: sugg,
		Priority:   PriorityHigh,
	})
}

// runProbes fills HasData for resolved fields. Each job writes only its own
// slice element, so no locking is needed.
func (a *Analyzer) runProbes(ctx context.Context, st *analysis, scopeID string) {
	if a.probe == nil || len(st.probes) == 0 {
		return
	}

	// one probe per model, fanned back out to every field on that model
	byModel := map[string][]int{}
	var models []string
	for _, job := range st.probes {
		if _, ok := byModel[job.model]; !ok {
			models = append(models, job.model)
		}
		byModel[job.model] = append(byModel[job.model], job.index)
	}

	hasData := make([]bool, len(models))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, model := range models {
		g.Go(func() error {
			ok, err := a.probe.HasData(gctx, model, scopeID)
			if err != nil {
				a.logger.Debug("data probe failed", "model", model, "error", err)
				return nil
			}
			hasData[i] = ok
			return nil
		})
	}
	_ = g.Wait()

	for i, model := range models {
		for _, idx := range byModel[model] {
			st.available[idx].HasData = hasData[i]
		}
	}
}

func summarize(total, satisfied, missing int) Summary {
	s := Summary{
		TotalConditions:     total,
		SatisfiedConditions: satisfied,
		MissingConditions:   missing,
	}
	switch {
	case missing == 0 && satisfied > 0:
		s.ExecutionReadiness = ReadinessReady
		s.ConfidenceScore = 100
	case missing > 0 && satisfied > 0:
		s.ExecutionReadiness = ReadinessPartial
		s.ConfidenceScore = clampScore(int(math.Round(float64(satisfied) / float64(satisfied+missing) * 100)))
	case missing == 0 && satisfied == 0:
		// no references at all: applies unconditionally to the scope
		s.ExecutionReadiness = ReadinessReady
		s.ConfidenceScore = 90
	default:
		s.ExecutionReadiness = ReadinessNotReady
		s.ConfidenceScore = 0
	}
	return s
}

func clampScore(n int) int {
	return min(max(n, 0), 100)
}

func suggestion(c *schema.Catalog, path string) string {
	similar := c.SuggestSimilarFields(path)
	if len(similar) == 0 {
		return "add this field to the schema"
	}
	return "did you mean: " + strings.Join(similar, " or ")
}

func queryTable(dq *rule.DynamicQuery) string {
	if dq == nil {
		return ""
	}
	return dq.Table
}

// recommendations groups missing fields by their leading path segment.
// dynamicQuery.<field> references are grouped under the query table.
func recommendations(missing []MissingField, table string) []string {
	if len(missing) == 0 {
		return []string{}
	}
	out := []string{fmt.Sprintf("add %d missing field(s) before activating the policy", len(missing))}

	groups := map[string][]string{}
	var order []string
	for _, m := range missing {
		head, rest, _ := strings.Cut(m.Field, ".")
		if head+"." == rule.DynamicQueryPrefix && table != "" {
			head = table
		}
		if _, ok := groups[head]; !ok {
			order = append(order, head)
			groups[head] = nil
		}
		if rest != "" && !slices.Contains(groups[head], rest) {
			groups[head] = append(groups[head], rest)
		}
	}
	for _, head := range order {
		fields := groups[head]
		if len(fields) == 0 {
			out = append(out, fmt.Sprintf("add model %s", head))
			continue
		}
		out = append(out, fmt.Sprintf("add %d field(s) to model %s: %s", len(fields), head, strings.Join(fields, ", ")))
	}
	return out
}

// FormulaFields extracts the distinct dotted identifiers in a formula, in
// order of first appearance.
func FormulaFields(formula string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range formulaFieldRe.FindAllString(formula, -1) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}
