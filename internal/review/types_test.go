package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityRank(t *testing.T) {
	assert.Greater(t, SeverityRank(SeverityCritical), SeverityRank(SeverityHigh))
	assert.Greater(t, SeverityRank(SeverityHigh), SeverityRank(SeverityMedium))
	assert.Greater(t, SeverityRank(SeverityMedium), SeverityRank(SeverityLow))
	assert.Greater(t, SeverityRank(SeverityLow), SeverityRank(Severity("bogus")))
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
	}{
		{"Critical", SeverityCritical},
		{"critical", SeverityCritical},
		{" HIGH ", SeverityHigh},
		{"medium", SeverityMedium},
		{"low", SeverityLow},
		{"urgent", SeverityLow},
		{"", SeverityLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseSeverity(tt.in), "input %q", tt.in)
	}
}

func TestMeetsThreshold(t *testing.T) {
	assert.True(t, MeetsThreshold(SeverityCritical, "high"))
	assert.True(t, MeetsThreshold(SeverityHigh, "high"))
	assert.False(t, MeetsThreshold(SeverityMedium, "high"))
	assert.False(t, MeetsThreshold(SeverityCritical, "none"))
	assert.False(t, MeetsThreshold(SeverityCritical, ""))
}

func TestBuildSummary(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "No issues found.", BuildSummary(nil))
	})

	t.Run("counts by severity", func(t *testing.T) {
		issues := []Issue{
			{Severity: SeverityCritical},
			{Severity: SeverityHigh},
			{Severity: SeverityHigh},
			{Severity: SeverityLow},
		}
		got := BuildSummary(issues)
		assert.Equal(t, "Found 4 potential issues: 1 critical, 2 high, 1 low.", got)
	})

	t.Run("single critical", func(t *testing.T) {
		got := BuildSummary([]Issue{{Severity: SeverityCritical}})
		assert.Contains(t, got, "1 critical")
	})
}

func TestResultAsCached(t *testing.T) {
	res := &Result{Summary: "s", Issues: []Issue{{Severity: SeverityLow, Message: "m"}}}
	cached := res.AsCached()

	assert.True(t, cached.FromCache)
	assert.False(t, res.FromCache, "original must not be mutated")
	assert.Equal(t, res.Summary, cached.Summary)
	assert.Equal(t, res.Issues, cached.Issues)
}
