package analysis

import (
	"fmt"
	"strings"

	"github.com/jcallahan/reviewd/internal/diffparse"
	"github.com/jcallahan/reviewd/internal/redact"
	"github.com/jcallahan/reviewd/internal/review"
)

const systemPrompt = `You are an expert code reviewer. Always respond with valid JSON only.`

const responseContract = `Respond with ONLY valid JSON in this exact format:
{
  "summary": "A brief overall assessment of the code changes",
  "issues": [
    {
      "severity": "Critical|High|Medium|Low",
      "message": "Description of the issue",
      "suggestion": "How to fix it",
      "path": "file path from the diff, if known",
      "line": 0
    }
  ]
}

If the code looks good with no issues, return:
{"summary": "Code looks good! No significant issues found.", "issues": []}

Remember: ONLY the JSON object, no additional text or markdown.`

const truncationMarker = "\n[... diff truncated for length ...]\n"

// buildPrompt assembles the bounded-size user prompt: review instructions,
// the redacted diff, and optionally the rule findings as extra context.
// Only the diff is sent, never full file content.
func buildPrompt(hunks []diffparse.Hunk, ruleIssues []review.Issue, maxDiffBytes int) string {
	var b strings.Builder
	b.WriteString("Analyze the following code diff and provide review feedback.\n\n")
	b.WriteString("Look for bugs, security issues, performance concerns, and code quality problems.\n")
	b.WriteString("Only review the changed lines shown. Classify each issue by severity:\n")
	b.WriteString("Critical (security vulnerabilities, data loss), High (incorrect behavior),\n")
	b.WriteString("Medium (performance, maintainability), Low (style, minor improvements).\n\n")
	b.WriteString(responseContract)

	if len(ruleIssues) > 0 {
		b.WriteString("\n\nDeterministic prechecks already flagged these; do not repeat them unless you can add detail:\n")
		for _, is := range ruleIssues {
			fmt.Fprintf(&b, "- [%s] %s:%d %s\n", is.Severity, is.Path, is.Line, is.Message)
		}
	}

	b.WriteString("\n\n## Code diff to review:\n\n```\n")
	b.WriteString(boundedDiff(hunks, maxDiffBytes))
	b.WriteString("\n```\n")
	return b.String()
}

// boundedDiff renders the normalized hunks back into compact diff text,
// masks secrets, and truncates at maxBytes to stay inside the model's
// context budget.
func boundedDiff(hunks []diffparse.Hunk, maxBytes int) string {
	var b strings.Builder
	for _, h := range hunks {
		fmt.Fprintf(&b, "File: %s\n", h.FilePath)
		for _, l := range h.Removed {
			fmt.Fprintf(&b, "-%d: %s\n", l.Number, l.Text)
		}
		for _, l := range h.Added {
			fmt.Fprintf(&b, "+%d: %s\n", l.Number, l.Text)
		}
		b.WriteString("\n")
	}
	text := redact.Apply(b.String())
	if maxBytes > 0 && len(text) > maxBytes {
		text = text[:maxBytes] + truncationMarker
	}
	return text
}
