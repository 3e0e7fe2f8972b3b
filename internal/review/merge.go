package review

import (
	"sort"
	"strings"
)

// Merge reconciles rule-based and AI-based issues into one ordered,
// deduplicated result. It is pure and total: identical inputs always
// produce an identical Result.
//
// Two issues are duplicates when they reference the same file and line and
// their normalized keyword sets overlap by at least half (Jaccard >= 0.5).
// The higher-severity duplicate wins, taking the richer suggestion text.
//
// Final ordering: severity descending, Rule-sourced before AI-sourced
// within equal severity, then insertion order.
func Merge(ruleIssues, aiIssues []Issue) Result {
	merged := make([]Issue, 0, len(ruleIssues)+len(aiIssues))
	merged = append(merged, ruleIssues...)

	for _, ai := range aiIssues {
		dup := -1
		for i := range merged {
			if isDuplicate(merged[i], ai) {
				dup = i
				break
			}
		}
		if dup == -1 {
			merged = append(merged, ai)
			continue
		}
		merged[dup] = reconcile(merged[dup], ai)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		ri, rj := SeverityRank(merged[i].Severity), SeverityRank(merged[j].Severity)
		if ri != rj {
			return ri > rj
		}
		return sourceRank(merged[i].Source) < sourceRank(merged[j].Source)
	})

	return Result{
		Summary: BuildSummary(merged),
		Issues:  merged,
	}
}

func sourceRank(s Source) int {
	if s == SourceRule {
		return 0
	}
	return 1
}

func isDuplicate(a, b Issue) bool {
	if a.Path == "" || b.Path == "" || a.Path != b.Path {
		return false
	}
	if a.Line == 0 || b.Line == 0 || a.Line != b.Line {
		return false
	}
	return keywordOverlap(a.Message, b.Message) >= 0.5
}

// reconcile keeps the higher-severity duplicate, preferring the richer
// suggestion text from either side.
func reconcile(existing, incoming Issue) Issue {
	winner := existing
	if SeverityRank(incoming.Severity) > SeverityRank(existing.Severity) {
		winner = incoming
	}
	if len(incoming.Suggestion) > len(winner.Suggestion) {
		winner.Suggestion = incoming.Suggestion
	}
	if len(existing.Suggestion) > len(winner.Suggestion) {
		winner.Suggestion = existing.Suggestion
	}
	return winner
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "been": true, "by": true,
	"for": true, "has": true, "in": true, "is": true, "it": true, "may": true,
	"of": true, "on": true, "or": true, "the": true, "this": true, "to": true,
	"via": true, "with": true,
}

// keywordOverlap computes Jaccard similarity between the normalized keyword
// sets of two messages.
func keywordOverlap(a, b string) float64 {
	ka, kb := keywords(a), keywords(b)
	if len(ka) == 0 || len(kb) == 0 {
		return 0
	}
	inter := 0
	for w := range ka {
		if kb[w] {
			inter++
		}
	}
	union := len(ka) + len(kb) - inter
	return float64(inter) / float64(union)
}

func keywords(msg string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(msg), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		if len(w) < 3 || stopwords[w] {
			continue
		}
		set[w] = true
	}
	return set
}
