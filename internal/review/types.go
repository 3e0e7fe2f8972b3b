package review

import (
	"fmt"
	"strings"
)

// Severity classifies how serious an issue is.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// SeverityRank returns a numeric rank for sorting (higher = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// ParseSeverity normalizes a free-form severity string. Unknown values map
// to Low rather than failing: the AI layer is probabilistic and an odd label
// must not abort a review.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return SeverityCritical
	case "high":
		return SeverityHigh
	case "medium":
		return SeverityMedium
	case "low":
		return SeverityLow
	default:
		return SeverityLow
	}
}

// MeetsThreshold returns true if severity is at or above the threshold.
// An empty or "none" threshold never matches.
func MeetsThreshold(s Severity, threshold string) bool {
	if threshold == "" || threshold == "none" {
		return false
	}
	return SeverityRank(s) >= SeverityRank(ParseSeverity(threshold))
}

// Source identifies which analysis layer produced an issue.
type Source string

const (
	SourceRule Source = "Rule"
	SourceAI   Source = "AI"
)

// Issue is a single review finding. Issues are immutable value objects.
type Issue struct {
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
	Source     Source   `json:"source"`
	Path       string   `json:"path,omitempty"`
	Line       int      `json:"line,omitempty"`
}

// Result is the final artifact of a review.
type Result struct {
	Summary   string  `json:"summary"`
	Issues    []Issue `json:"issues"`
	FromCache bool    `json:"from_cache"`
	Degraded  bool    `json:"degraded"`
}

// AsCached returns a shallow copy of the result flagged as served from cache.
// The issue list is shared; issues are immutable so this is safe.
func (r *Result) AsCached() *Result {
	cp := *r
	cp.FromCache = true
	return &cp
}

// SeverityCounts holds issue counts by severity level.
type SeverityCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// CountBySeverity tallies issues per severity level.
func CountBySeverity(issues []Issue) SeverityCounts {
	var c SeverityCounts
	for _, is := range issues {
		switch is.Severity {
		case SeverityCritical:
			c.Critical++
		case SeverityHigh:
			c.High++
		case SeverityMedium:
			c.Medium++
		case SeverityLow:
			c.Low++
		}
	}
	return c
}

// BuildSummary renders the templated count-by-severity summary line.
func BuildSummary(issues []Issue) string {
	if len(issues) == 0 {
		return "No issues found."
	}
	c := CountBySeverity(issues)
	parts := make([]string, 0, 4)
	if c.Critical > 0 {
		parts = append(parts, fmt.Sprintf("%d critical", c.Critical))
	}
	if c.High > 0 {
		parts = append(parts, fmt.Sprintf("%d high", c.High))
	}
	if c.Medium > 0 {
		parts = append(parts, fmt.Sprintf("%d medium", c.Medium))
	}
	if c.Low > 0 {
		parts = append(parts, fmt.Sprintf("%d low", c.Low))
	}
	return fmt.Sprintf("Found %d potential issues: %s.", len(issues), strings.Join(parts, ", "))
}
