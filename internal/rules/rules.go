package rules

import (
	"fmt"
	"regexp"

	"github.com/jcallahan/reviewd/internal/diffparse"
	"github.com/jcallahan/reviewd/internal/review"
)

// Version identifies the active rule set. It is folded into the diff
// fingerprint so cached results are invalidated when rules change.
const Version = "v1"

// MaxLineLength is the threshold for the long-line rule.
const MaxLineLength = 160

// rule is a deterministic check over one added line.
type rule struct {
	id       string
	severity review.Severity
	pattern  *regexp.Regexp
	message  string
	suggest  string
}

// Declaration order is significant: issue ordering within the rule output is
// rule-declaration order, then line order.
var lineRules = []rule{
	{
		id:       "hardcoded-credential",
		severity: review.SeverityCritical,
		pattern:  regexp.MustCompile(`(?i)(password|passwd|secret|token|api[_-]?key|credential)\s*[:=]+\s*["'][^"']{4,}["']`),
		message:  "Hardcoded credential assigned to a variable",
		suggest:  "Load secrets from the environment or a secret manager instead of source code",
	},
	{
		id:       "private-key",
		severity: review.SeverityCritical,
		pattern:  regexp.MustCompile(`-----BEGIN\s+(RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`),
		message:  "Private key material committed to the repository",
		suggest:  "Remove the key and rotate it; keys must never live in version control",
	},
	{
		id:       "aws-access-key",
		severity: review.SeverityCritical,
		pattern:  regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
		message:  "AWS access key ID embedded in code",
		suggest:  "Revoke this key and use IAM roles or environment configuration",
	},
	{
		id:       "sql-string-concat",
		severity: review.SeverityHigh,
		pattern:  regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE)\b.*["']\s*(\+|%|\|\|)\s*|(\+|%)\s*["']?\s*(FROM|WHERE|VALUES)\b`),
		message:  "SQL statement built by string concatenation",
		suggest:  "Use parameterized queries or prepared statements",
	},
	{
		id:       "dynamic-eval",
		severity: review.SeverityHigh,
		pattern:  regexp.MustCompile(`(?i)\b(eval|exec)\s*\(`),
		message:  "Dynamic code execution via eval/exec",
		suggest:  "Avoid executing dynamically constructed code; use explicit dispatch",
	},
	{
		id:       "swallowed-exception",
		severity: review.SeverityMedium,
		pattern:  regexp.MustCompile(`(?i)(except\s*(Exception)?\s*:\s*pass\b|catch\s*\([^)]*\)\s*\{\s*\})`),
		message:  "Exception caught and silently discarded",
		suggest:  "Handle the error or at minimum log it",
	},
	{
		id:       "debug-print",
		severity: review.SeverityLow,
		pattern:  regexp.MustCompile(`(?i)\b(console\.log|fmt\.Println|print(ln)?)\s*\(.*(debug|xxx|temp)`),
		message:  "Debug print statement left in the change",
		suggest:  "Remove the debug output or route it through the logger",
	},
	{
		id:       "todo-marker",
		severity: review.SeverityLow,
		pattern:  regexp.MustCompile(`(?i)\b(TODO|FIXME|HACK)\b`),
		message:  "Unresolved TODO/FIXME marker added",
		suggest:  "Track the follow-up in an issue or resolve it before merging",
	},
}

// Evaluate runs every rule over the added lines of the given hunks.
// It is a pure function and never fails: unmatched patterns simply produce
// no issues, and one line may trigger several rules.
func Evaluate(hunks []diffparse.Hunk) []review.Issue {
	var issues []review.Issue
	for _, r := range lineRules {
		for _, h := range hunks {
			for _, line := range h.Added {
				if r.pattern.MatchString(line.Text) {
					issues = append(issues, review.Issue{
						Severity:   r.severity,
						Message:    r.message,
						Suggestion: r.suggest,
						Source:     review.SourceRule,
						Path:       h.FilePath,
						Line:       line.Number,
					})
				}
			}
		}
	}
	issues = append(issues, evaluateLongLines(hunks)...)
	return issues
}

func evaluateLongLines(hunks []diffparse.Hunk) []review.Issue {
	var issues []review.Issue
	for _, h := range hunks {
		for _, line := range h.Added {
			if len(line.Text) > MaxLineLength {
				issues = append(issues, review.Issue{
					Severity:   review.SeverityLow,
					Message:    fmt.Sprintf("Line exceeds %d characters (%d)", MaxLineLength, len(line.Text)),
					Suggestion: "Break the line up for readability",
					Source:     review.SourceRule,
					Path:       h.FilePath,
					Line:       line.Number,
				})
			}
		}
	}
	return issues
}
