package pipeline

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jcallahan/reviewd/internal/analysis"
	"github.com/jcallahan/reviewd/internal/cache"
	"github.com/jcallahan/reviewd/internal/diffparse"
	"github.com/jcallahan/reviewd/internal/metrics"
	"github.com/jcallahan/reviewd/internal/review"
	"github.com/jcallahan/reviewd/internal/rules"
)

// Request is one review submission: unified-diff text or an inline code
// snippet, plus optional source-control metadata.
type Request struct {
	Diff string
	Code string

	Repo string
	PR   int
	SHA  string
}

// Options configures pipeline behavior.
type Options struct {
	// AIEnabled gates the LLM analysis pass. When off, every result is
	// rule-only and degraded.
	AIEnabled bool
	// RuleContext sequences AI analysis after rule evaluation and feeds the
	// rule findings into the prompt. When off, the two passes run
	// concurrently.
	RuleContext bool
	// AITimeout bounds the total wait for one analysis pass, retries
	// included.
	AITimeout time.Duration
	// BreakerCooldown is how long the AI circuit stays open after a
	// terminal failure. Zero keeps it open for the process session.
	BreakerCooldown time.Duration
	// Model and RuleSetVersion are folded into the cache fingerprint.
	Model          string
	RuleSetVersion string
}

// Engine orchestrates a review request through parsing, fingerprinting,
// caching, rule evaluation, AI analysis, and merging. All dependencies are
// injected; the cache is the only shared mutable state.
type Engine struct {
	opts     Options
	cache    *cache.Cache
	analyzer analysis.Analyzer
	breaker  *analysis.Breaker
	log      *zap.Logger
}

// New creates an engine. cache may be nil to bypass caching (every request
// computes fresh); analyzer may be nil when AI is disabled.
func New(opts Options, c *cache.Cache, a analysis.Analyzer, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.RuleSetVersion == "" {
		opts.RuleSetVersion = rules.Version
	}
	return &Engine{
		opts:     opts,
		cache:    c,
		analyzer: a,
		breaker:  analysis.NewBreaker(opts.BreakerCooldown),
		log:      log,
	}
}

// AIAvailable reports whether the AI layer is configured and not
// circuit-broken.
func (e *Engine) AIAvailable() bool {
	return e.opts.AIEnabled && e.analyzer != nil && !e.breaker.IsOpen()
}

// Review runs the full pipeline for one request. Only malformed input
// produces an error; AI and cache failures degrade the result instead.
func (e *Engine) Review(ctx context.Context, req Request) (*review.Result, error) {
	hunks, err := parseRequest(req)
	if err != nil {
		metrics.ReviewsTotal.WithLabelValues("malformed").Inc()
		return nil, err
	}
	if len(hunks) == 0 {
		// Nothing changed: an empty, non-degraded result without touching
		// the cache or the AI layer.
		metrics.ReviewsTotal.WithLabelValues("ok").Inc()
		return &review.Result{Summary: review.BuildSummary(nil), Issues: []review.Issue{}}, nil
	}

	fp := diffparse.Fingerprint(hunks, e.opts.RuleSetVersion, e.opts.Model)
	log := e.log.With(zap.String("fingerprint", fp[:12]))

	if e.cache == nil {
		res, _ := e.compute(ctx, hunks)
		e.countResult(res)
		return res, nil
	}

	if res, ok := e.cache.Get(fp); ok {
		metrics.ReviewsTotal.WithLabelValues("cached").Inc()
		log.Debug("cache hit")
		return res.AsCached(), nil
	}

	res, shared, err := e.cache.Do(ctx, fp, func(cctx context.Context) (*review.Result, error) {
		return e.compute(cctx, hunks)
	})
	if err != nil {
		// The wait budget ran out before the owner finished. Degrade to a
		// locally computed rule-only result; the owner's computation is
		// detached and still populates the cache.
		log.Warn("review wait expired, returning rule-only result", zap.Error(err))
		fallback := review.Merge(rules.Evaluate(hunks), nil)
		fallback.Degraded = true
		metrics.ReviewsTotal.WithLabelValues("degraded").Inc()
		return &fallback, nil
	}
	if shared {
		log.Debug("joined in-flight computation")
	}
	e.countResult(res)
	return res, nil
}

// compute runs rule evaluation and AI analysis for a cache miss and merges
// their outputs. It never returns an error: AI failure degrades the result.
func (e *Engine) compute(ctx context.Context, hunks []diffparse.Hunk) (*review.Result, error) {
	aiOn := e.opts.AIEnabled && e.analyzer != nil
	degraded := !aiOn
	if aiOn && !e.breaker.Allow() {
		e.log.Warn("ai circuit open, skipping analysis")
		aiOn = false
		degraded = true
	}

	var (
		ruleIssues []review.Issue
		rep        analysis.Report
		aiErr      error
	)

	if aiOn && !e.opts.RuleContext {
		// No data dependency between the passes: run them concurrently.
		// An AI failure must not cancel rule evaluation, so it is recorded
		// rather than returned.
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			ruleIssues = rules.Evaluate(hunks)
			return nil
		})
		g.Go(func() error {
			rep, aiErr = e.analyze(gctx, hunks, nil)
			return nil
		})
		_ = g.Wait()
	} else {
		ruleIssues = rules.Evaluate(hunks)
		if aiOn {
			rep, aiErr = e.analyze(ctx, hunks, ruleIssues)
		}
	}

	switch {
	case aiOn && aiErr != nil:
		degraded = true
		if analysis.IsTerminal(aiErr) {
			e.breaker.Trip()
			e.log.Error("ai analysis failed terminally, circuit opened", zap.Error(aiErr))
		} else {
			e.log.Warn("ai analysis failed, degrading to rule-only result", zap.Error(aiErr))
		}
	case aiOn:
		e.breaker.Reset()
	}

	res := review.Merge(ruleIssues, rep.Issues)
	res.Degraded = degraded
	return &res, nil
}

func (e *Engine) analyze(ctx context.Context, hunks []diffparse.Hunk, ruleIssues []review.Issue) (analysis.Report, error) {
	if e.opts.AITimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.AITimeout)
		defer cancel()
	}
	return e.analyzer.Analyze(ctx, hunks, ruleIssues)
}

func (e *Engine) countResult(res *review.Result) {
	if res.Degraded {
		metrics.ReviewsTotal.WithLabelValues("degraded").Inc()
		return
	}
	metrics.ReviewsTotal.WithLabelValues("ok").Inc()
}

func parseRequest(req Request) ([]diffparse.Hunk, error) {
	switch {
	case strings.TrimSpace(req.Diff) != "":
		return diffparse.Parse(req.Diff)
	case strings.TrimSpace(req.Code) != "":
		return diffparse.ParseSnippet(req.Code), nil
	default:
		return nil, nil
	}
}
