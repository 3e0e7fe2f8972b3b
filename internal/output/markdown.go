package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jcallahan/reviewd/internal/review"
)

// MarkdownWriter outputs a PR-comment-friendly markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, res *review.Result) error {
	_, err := io.WriteString(w, Markdown(res))
	return err
}

// Markdown renders the result as a pull request comment body.
func Markdown(res *review.Result) string {
	var b strings.Builder

	b.WriteString("## Automated Code Review\n\n")
	fmt.Fprintf(&b, "%s\n\n", res.Summary)

	if res.Degraded {
		b.WriteString("> AI analysis was unavailable for this review; only rule-based checks ran.\n\n")
	}

	if len(res.Issues) == 0 {
		b.WriteString("No issues found. :white_check_mark:\n")
		return b.String()
	}

	c := review.CountBySeverity(res.Issues)
	b.WriteString("| Severity | Count |\n")
	b.WriteString("|----------|-------|\n")
	fmt.Fprintf(&b, "| Critical | %d |\n", c.Critical)
	fmt.Fprintf(&b, "| High     | %d |\n", c.High)
	fmt.Fprintf(&b, "| Medium   | %d |\n", c.Medium)
	fmt.Fprintf(&b, "| Low      | %d |\n\n", c.Low)

	for _, is := range res.Issues {
		fmt.Fprintf(&b, "### %s %s\n\n", severityIcon(is.Severity), is.Severity)
		if is.Path != "" {
			fmt.Fprintf(&b, "**`%s`**", is.Path)
			if is.Line > 0 {
				fmt.Fprintf(&b, " line %d", is.Line)
			}
			fmt.Fprintf(&b, " _(%s)_\n\n", is.Source)
		} else {
			fmt.Fprintf(&b, "_(%s)_\n\n", is.Source)
		}
		fmt.Fprintf(&b, "%s\n\n", is.Message)
		if is.Suggestion != "" {
			fmt.Fprintf(&b, "**Suggestion:** %s\n\n", is.Suggestion)
		}
	}
	return b.String()
}

func severityIcon(s review.Severity) string {
	switch s {
	case review.SeverityCritical:
		return ":rotating_light:"
	case review.SeverityHigh:
		return ":red_circle:"
	case review.SeverityMedium:
		return ":yellow_circle:"
	default:
		return ":white_circle:"
	}
}
