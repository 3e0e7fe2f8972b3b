package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jcallahan/reviewd/internal/review"
)

// rawReport is the JSON structure the LLM is asked to return.
type rawReport struct {
	Summary string     `json:"summary"`
	Issues  []rawIssue `json:"issues"`
}

type rawIssue struct {
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
	Path       string `json:"path"`
	Line       int    `json:"line"`
}

// parseReport validates raw LLM output against the response contract.
// Markdown fences and surrounding prose are tolerated, but the payload must
// decode into the expected shape with an explicit "issues" field and a
// non-empty message per issue. Anything else is a deviation: the caller
// reports failure rather than fabricating issues from unparseable text.
func parseReport(content string) (Report, error) {
	content = stripFences(strings.TrimSpace(content))

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return Report{}, fmt.Errorf("no JSON object in response")
	}
	payload := []byte(content[start : end+1])

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(payload, &probe); err != nil {
		return Report{}, fmt.Errorf("decoding response: %w", err)
	}
	if _, ok := probe["issues"]; !ok {
		return Report{}, fmt.Errorf(`response missing "issues" field`)
	}

	var raw rawReport
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Report{}, fmt.Errorf("decoding response: %w", err)
	}

	issues := make([]review.Issue, 0, len(raw.Issues))
	for i, ri := range raw.Issues {
		if strings.TrimSpace(ri.Message) == "" {
			return Report{}, fmt.Errorf("issue %d has no message", i)
		}
		issues = append(issues, review.Issue{
			Severity:   review.ParseSeverity(ri.Severity),
			Message:    ri.Message,
			Suggestion: ri.Suggestion,
			Source:     review.SourceAI,
			Path:       ri.Path,
			Line:       ri.Line,
		})
	}
	return Report{Summary: raw.Summary, Issues: issues}, nil
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(content string) string {
	if !strings.HasPrefix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return content
	}
	end := len(lines)
	if strings.TrimSpace(lines[end-1]) == "```" {
		end--
	}
	return strings.Join(lines[1:end], "\n")
}
