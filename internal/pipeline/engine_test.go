package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcallahan/reviewd/internal/analysis"
	"github.com/jcallahan/reviewd/internal/cache"
	"github.com/jcallahan/reviewd/internal/diffparse"
	"github.com/jcallahan/reviewd/internal/review"
)

const credentialDiff = `diff --git a/config.py b/config.py
--- a/config.py
+++ b/config.py
@@ -1,2 +1,3 @@
 import os
+password = 'admin123'
 DEBUG = False
`

// fakeAnalyzer scripts the AI layer for engine tests.
type fakeAnalyzer struct {
	calls  atomic.Int32
	report analysis.Report
	err    error
	delay  time.Duration
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, hunks []diffparse.Hunk, ruleIssues []review.Issue) (analysis.Report, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return analysis.Report{}, &analysis.AIError{Op: "complete", Transient: true, Err: ctx.Err()}
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return analysis.Report{}, f.err
	}
	return f.report, nil
}

func newTestEngine(ai *fakeAnalyzer, opts Options) *Engine {
	c := cache.New(64, time.Hour, time.Minute)
	var analyzer analysis.Analyzer
	if ai != nil {
		analyzer = ai
	}
	return New(opts, c, analyzer, nil)
}

func TestReviewMergesRuleAndAIFindings(t *testing.T) {
	ai := &fakeAnalyzer{report: analysis.Report{
		Summary: "model summary",
		Issues: []review.Issue{{
			Severity: review.SeverityMedium,
			Message:  "DEBUG toggling belongs in configuration",
			Source:   review.SourceAI,
			Path:     "config.py",
			Line:     3,
		}},
	}}
	e := newTestEngine(ai, Options{AIEnabled: true, RuleContext: true})

	res, err := e.Review(context.Background(), Request{Diff: credentialDiff})
	require.NoError(t, err)

	assert.False(t, res.Degraded)
	assert.False(t, res.FromCache)
	require.Len(t, res.Issues, 2)
	assert.Equal(t, review.SeverityCritical, res.Issues[0].Severity)
	assert.Equal(t, review.SourceRule, res.Issues[0].Source)
	assert.Equal(t, review.SourceAI, res.Issues[1].Source)
	assert.Contains(t, res.Summary, "1 critical")
}

func TestReviewMalformedDiff(t *testing.T) {
	e := newTestEngine(nil, Options{})
	_, err := e.Review(context.Background(), Request{Diff: "not a diff at all"})
	require.Error(t, err)
	assert.ErrorIs(t, err, diffparse.ErrMalformedDiff)
}

func TestReviewEmptyRequest(t *testing.T) {
	e := newTestEngine(nil, Options{})
	res, err := e.Review(context.Background(), Request{})
	require.NoError(t, err)
	assert.Empty(t, res.Issues)
	assert.False(t, res.Degraded)
	assert.Equal(t, "No issues found.", res.Summary)
}

func TestReviewSnippetInput(t *testing.T) {
	e := newTestEngine(nil, Options{})
	res, err := e.Review(context.Background(), Request{Code: "eval(user_input)\n"})
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, review.SeverityHigh, res.Issues[0].Severity)
	assert.True(t, res.Degraded, "no analyzer configured means rule-only degraded results")
}

func TestReviewDegradesOnAIFailure(t *testing.T) {
	ai := &fakeAnalyzer{err: &analysis.AIError{Op: "complete", Transient: true, Err: errors.New("rate limited")}}
	e := newTestEngine(ai, Options{AIEnabled: true, RuleContext: true})

	res, err := e.Review(context.Background(), Request{Diff: credentialDiff})
	require.NoError(t, err, "AI failure degrades, it never fails the review")

	assert.True(t, res.Degraded)
	require.Len(t, res.Issues, 1, "rule findings survive the failed analysis")
	assert.Equal(t, review.SourceRule, res.Issues[0].Source)
	assert.True(t, e.AIAvailable(), "transient failures do not open the circuit")
}

func TestReviewTerminalFailureOpensCircuit(t *testing.T) {
	ai := &fakeAnalyzer{err: &analysis.AIError{Op: "complete", Transient: false, Err: errors.New("bad key")}}
	e := newTestEngine(ai, Options{AIEnabled: true, RuleContext: true})

	res, err := e.Review(context.Background(), Request{Diff: credentialDiff})
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.False(t, e.AIAvailable(), "terminal failure opens the circuit")

	// Subsequent distinct reviews skip the AI layer entirely.
	res2, err := e.Review(context.Background(), Request{Code: "x = eval(y)\n"})
	require.NoError(t, err)
	assert.True(t, res2.Degraded)
	assert.Equal(t, int32(1), ai.calls.Load())
}

func TestReviewSecondSubmissionServedFromCache(t *testing.T) {
	ai := &fakeAnalyzer{report: analysis.Report{Summary: "ok"}}
	e := newTestEngine(ai, Options{AIEnabled: true, RuleContext: true})

	first, err := e.Review(context.Background(), Request{Diff: credentialDiff})
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := e.Review(context.Background(), Request{Diff: credentialDiff})
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Issues, second.Issues)
	assert.Equal(t, int32(1), ai.calls.Load(), "cached submissions never touch the AI layer")
}

func TestReviewWhitespaceVariantHitsCache(t *testing.T) {
	ai := &fakeAnalyzer{report: analysis.Report{Summary: "ok"}}
	e := newTestEngine(ai, Options{AIEnabled: true, RuleContext: true})

	_, err := e.Review(context.Background(), Request{Diff: credentialDiff})
	require.NoError(t, err)

	variant := "diff --git a/config.py b/config.py\n" +
		"--- a/config.py\n" +
		"+++ b/config.py\n" +
		"@@ -1,2 +1,3 @@\n" +
		" import os\n" +
		"+password = 'admin123'  \t\n" +
		" DEBUG = False\n"
	res, err := e.Review(context.Background(), Request{Diff: variant})
	require.NoError(t, err)
	assert.True(t, res.FromCache, "trailing whitespace does not change the fingerprint")
	assert.Equal(t, int32(1), ai.calls.Load())
}

func TestReviewConcurrentIdenticalDiffsShareOneAnalysis(t *testing.T) {
	ai := &fakeAnalyzer{report: analysis.Report{Summary: "ok"}, delay: 50 * time.Millisecond}
	e := newTestEngine(ai, Options{AIEnabled: true, RuleContext: true})

	const callers = 8
	results := make([]*review.Result, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := e.Review(context.Background(), Request{Diff: credentialDiff})
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), ai.calls.Load(), "one analysis across all concurrent callers")
	for _, res := range results {
		require.NotNil(t, res)
		assert.Equal(t, results[0].Issues, res.Issues)
	}
}

func TestReviewWaitBudgetFallsBackToRules(t *testing.T) {
	ai := &fakeAnalyzer{report: analysis.Report{Summary: "ok"}, delay: 200 * time.Millisecond}
	e := newTestEngine(ai, Options{AIEnabled: true, RuleContext: true})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res, err := e.Review(ctx, Request{Diff: credentialDiff})
	require.NoError(t, err, "an expired wait degrades instead of failing")
	assert.True(t, res.Degraded)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, review.SourceRule, res.Issues[0].Source)

	// The detached owner finishes and populates the cache for the next caller.
	require.Eventually(t, func() bool {
		full, err := e.Review(context.Background(), Request{Diff: credentialDiff})
		return err == nil && full.FromCache && !full.Degraded
	}, time.Second, 20*time.Millisecond)
}

func TestReviewConcurrentPasses(t *testing.T) {
	ai := &fakeAnalyzer{report: analysis.Report{
		Issues: []review.Issue{{Severity: review.SeverityLow, Message: "minor nit", Source: review.SourceAI}},
	}}
	e := newTestEngine(ai, Options{AIEnabled: true, RuleContext: false})

	res, err := e.Review(context.Background(), Request{Diff: credentialDiff})
	require.NoError(t, err)
	assert.False(t, res.Degraded)
	assert.Len(t, res.Issues, 2)
	assert.Equal(t, int32(1), ai.calls.Load())
}

func TestAIAvailable(t *testing.T) {
	assert.False(t, newTestEngine(nil, Options{}).AIAvailable(), "no analyzer")
	assert.False(t, newTestEngine(&fakeAnalyzer{}, Options{AIEnabled: false}).AIAvailable(), "disabled by config")
	assert.True(t, newTestEngine(&fakeAnalyzer{}, Options{AIEnabled: true}).AIAvailable())
}
