package diffparse

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Fingerprint computes a deterministic content hash of normalized hunks plus
// the active rule-set and model versions. Identical diff and identical
// analysis configuration always hash to the same key, so cached results can
// be shared; any change to content or configuration produces a new key.
//
// Hunks are already whitespace-normalized by Parse/ParseSnippet, so diffs
// differing only in trailing whitespace fingerprint identically.
func Fingerprint(hunks []Hunk, ruleSetVersion, model string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "rules=%s;model=%s;", ruleSetVersion, model)
	for _, h := range hunks {
		fmt.Fprintf(&b, "file=%s;", h.FilePath)
		for _, l := range h.Added {
			fmt.Fprintf(&b, "+%d:%s\n", l.Number, l.Text)
		}
		for _, l := range h.Removed {
			fmt.Fprintf(&b, "-%d:%s\n", l.Number, l.Text)
		}
	}
	sum := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("%x", sum)
}
