package output

import (
	"fmt"
	"io"

	"github.com/jcallahan/reviewd/internal/review"
)

// TextWriter outputs a terminal-friendly report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, res *review.Result) error {
	fmt.Fprintf(w, "%s\n", res.Summary)
	if res.Degraded {
		fmt.Fprintln(w, "(AI analysis unavailable; rule-based checks only)")
	}
	if res.FromCache {
		fmt.Fprintln(w, "(served from cache)")
	}
	if len(res.Issues) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	for _, is := range res.Issues {
		loc := ""
		if is.Path != "" {
			loc = is.Path
			if is.Line > 0 {
				loc = fmt.Sprintf("%s:%d", is.Path, is.Line)
			}
			loc += " "
		}
		fmt.Fprintf(w, "[%s] %s%s (%s)\n", is.Severity, loc, is.Message, is.Source)
		if is.Suggestion != "" {
			fmt.Fprintf(w, "    suggestion: %s\n", is.Suggestion)
		}
	}
	return nil
}
