package analysis

import (
	"context"

	"github.com/jcallahan/reviewd/internal/diffparse"
	"github.com/jcallahan/reviewd/internal/review"
)

// Report is the validated output of one LLM analysis pass.
type Report struct {
	Summary string
	Issues  []review.Issue
}

// Analyzer adapts a diff (plus optional rule findings for context) into an
// LLM request and returns the parsed, validated issue list.
type Analyzer interface {
	Analyze(ctx context.Context, hunks []diffparse.Hunk, ruleIssues []review.Issue) (Report, error)
}
