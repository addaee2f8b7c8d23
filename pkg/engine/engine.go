// Package engine ties the pipeline together: parse, normalize,
// fingerprint, evaluate rules, and synthesize the three-level verdict.
package engine

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/protosign/pkg/breaking"
	"github.com/platinummonkey/protosign/pkg/cache"
	"github.com/platinummonkey/protosign/pkg/canonical"
	"github.com/platinummonkey/protosign/pkg/observability"
	"github.com/platinummonkey/protosign/pkg/parser"
)

// Verdict is the three-level comparison summary.
type Verdict string

const (
	// VerdictGreen means the fingerprints match: semantically identical.
	VerdictGreen Verdict = "green"
	// VerdictYellow means the schemas differ but no rule fired:
	// backward compatible.
	VerdictYellow Verdict = "yellow"
	// VerdictRed means at least one breaking change was found.
	VerdictRed Verdict = "red"
)

// Source is one .proto input: a display path and its content.
type Source struct {
	Path    string
	Content string
	// Imports supplies additional import sources keyed by import path,
	// for files that depend on more than the well-known types.
	Imports map[string]string
}

// Engine evaluates file pairs. The zero configuration is fully
// functional; cache, metrics, and logger are optional collaborators.
type Engine struct {
	cache   *cache.Cache
	metrics *observability.Metrics
	log     logrus.FieldLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache enables the fingerprint cache.
func WithCache(c *cache.Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithMetrics attaches Prometheus instruments.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger attaches a logger for debug tracing.
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = log }
}

// New creates an engine, failing fast if the rule registry self-test
// does not pass.
func New(opts ...Option) (*Engine, error) {
	if err := breaking.Verify(); err != nil {
		return nil, err
	}
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// canonicalize runs parse and normalize for one source.
func (e *Engine) canonicalize(src Source) (*canonical.File, *parser.Result, error) {
	parsed, err := parser.ParseWithImports(src.Path, src.Content, src.Imports)
	if err != nil {
		e.countParseError()
		return nil, nil, &Error{Stage: StageParse, Path: src.Path, Err: err}
	}
	file, err := canonical.Normalize(parsed.File)
	if err != nil {
		e.countParseError()
		return nil, nil, &Error{Stage: StageNormalize, Path: src.Path, Err: err}
	}
	return file, parsed, nil
}

// Fingerprint computes the semantic fingerprint of a source, consulting
// the cache when one is configured.
func (e *Engine) Fingerprint(src Source) (string, error) {
	key := cache.Key(src.Content)
	if fp, ok := e.cache.Get(key); ok {
		e.countCacheHit(true)
		return fp, nil
	}
	e.countCacheHit(false)

	file, _, err := e.canonicalize(src)
	if err != nil {
		return "", err
	}
	fp := canonical.Fingerprint(file)
	e.cache.Add(key, fp)
	return fp, nil
}

// Breaking evaluates the selected rule set over a file pair and returns
// the report. A parse or normalize failure on either side aborts with
// an engine error and no report.
func (e *Engine) Breaking(prev, curr Source, sel breaking.Selection) (*Report, error) {
	plan, err := breaking.Resolve(sel)
	if err != nil {
		return nil, &Error{Stage: StageConfig, Err: err}
	}
	return e.run(prev, curr, plan)
}

func (e *Engine) run(prev, curr Source, plan *breaking.Plan) (*Report, error) {
	prevFile, prevParsed, err := e.canonicalize(prev)
	if err != nil {
		return nil, err
	}
	currFile, currParsed, err := e.canonicalize(curr)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	changes := plan.Run(prevFile, currFile, &breaking.Context{
		PreviousPath:      prev.Path,
		CurrentPath:       curr.Path,
		PreviousPositions: prevParsed.Positions,
		CurrentPositions:  currParsed.Positions,
	})
	if e.metrics != nil {
		e.metrics.RuleEvaluationSeconds.Observe(time.Since(start).Seconds())
	}
	if e.log != nil {
		e.log.WithFields(logrus.Fields{
			"previous": prev.Path,
			"current":  curr.Path,
			"changes":  len(changes),
		}).Debug("evaluated rule set")
	}
	if changes == nil {
		changes = []breaking.Change{}
	}
	return &Report{Changes: changes}, nil
}

// Compare synthesizes the verdict for a file pair: Green on fingerprint
// equality, otherwise Yellow or Red depending on whether the full
// default rule set finds changes.
func (e *Engine) Compare(prev, curr Source) (*Result, error) {
	prevFile, prevParsed, err := e.canonicalize(prev)
	if err != nil {
		return nil, err
	}
	currFile, currParsed, err := e.canonicalize(curr)
	if err != nil {
		return nil, err
	}

	result := &Result{
		PreviousFingerprint: canonical.Fingerprint(prevFile),
		CurrentFingerprint:  canonical.Fingerprint(currFile),
	}
	if result.PreviousFingerprint == result.CurrentFingerprint {
		result.Verdict = VerdictGreen
		e.countComparison(result.Verdict)
		return result, nil
	}

	plan, err := breaking.Resolve(breaking.Selection{UseCategories: breaking.VerdictCategories})
	if err != nil {
		return nil, &Error{Stage: StageConfig, Err: err}
	}
	start := time.Now()
	result.Changes = plan.Run(prevFile, currFile, &breaking.Context{
		PreviousPath:      prev.Path,
		CurrentPath:       curr.Path,
		PreviousPositions: prevParsed.Positions,
		CurrentPositions:  currParsed.Positions,
	})
	if e.metrics != nil {
		e.metrics.RuleEvaluationSeconds.Observe(time.Since(start).Seconds())
	}

	if len(result.Changes) == 0 {
		result.Verdict = VerdictYellow
	} else {
		result.Verdict = VerdictRed
	}
	e.countComparison(result.Verdict)
	return result, nil
}

func (e *Engine) countComparison(v Verdict) {
	if e.metrics != nil {
		e.metrics.ComparisonsTotal.WithLabelValues(string(v)).Inc()
	}
}

func (e *Engine) countParseError() {
	if e.metrics != nil {
		e.metrics.ParseErrorsTotal.Inc()
	}
}

func (e *Engine) countCacheHit(hit bool) {
	if e.metrics == nil {
		return
	}
	if hit {
		e.metrics.CacheHitsTotal.Inc()
		return
	}
	e.metrics.CacheMissesTotal.Inc()
}
