package diffparse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// ErrMalformedDiff reports input that does not follow recognizable
// unified-diff structure. It is the only pipeline error surfaced to callers.
var ErrMalformedDiff = errors.New("malformed diff")

// Line is a single changed line with its post-image (added) or pre-image
// (removed) line number.
type Line struct {
	Number int
	Text   string
}

// Hunk is a normalized slice of a code change for one file.
// Immutable once constructed.
type Hunk struct {
	FilePath string
	Added    []Line
	Removed  []Line
}

// Parse converts raw unified-diff text into normalized hunks.
//
// Normalization strips trailing whitespace from line text and drops hunks
// that carry no added or removed content (pure renames and context-only
// hunks), so two textually different but semantically identical diffs
// normalize to the same form.
func Parse(raw string) ([]Hunk, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	fileDiffs, err := diff.ParseMultiFileDiff([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDiff, err)
	}
	if len(fileDiffs) == 0 {
		return nil, fmt.Errorf("%w: no file sections found", ErrMalformedDiff)
	}

	var hunks []Hunk
	for _, fd := range fileDiffs {
		path := cleanPath(fd.NewName)
		if path == "" {
			path = cleanPath(fd.OrigName)
		}
		for _, h := range fd.Hunks {
			hunk := parseHunkBody(path, h)
			if len(hunk.Added) == 0 && len(hunk.Removed) == 0 {
				continue
			}
			hunks = append(hunks, hunk)
		}
	}
	return hunks, nil
}

// ParseSnippet treats an inline code submission as one synthetic hunk with
// only added lines, so snippets flow through the same pipeline as diffs.
func ParseSnippet(code string) []Hunk {
	lines := strings.Split(code, "\n")
	added := make([]Line, 0, len(lines))
	n := 0
	for _, l := range lines {
		n++
		text := strings.TrimRight(l, " \t")
		if text == "" && n == len(lines) {
			continue // trailing newline artifact
		}
		added = append(added, Line{Number: n, Text: text})
	}
	if len(added) == 0 {
		return nil
	}
	return []Hunk{{FilePath: "snippet", Added: added}}
}

func parseHunkBody(path string, h *diff.Hunk) Hunk {
	hunk := Hunk{FilePath: path}
	newLine := int(h.NewStartLine)
	origLine := int(h.OrigStartLine)

	for _, raw := range strings.Split(string(h.Body), "\n") {
		if raw == "" {
			continue
		}
		text := strings.TrimRight(raw[1:], " \t")
		switch raw[0] {
		case '+':
			hunk.Added = append(hunk.Added, Line{Number: newLine, Text: text})
			newLine++
		case '-':
			hunk.Removed = append(hunk.Removed, Line{Number: origLine, Text: text})
			origLine++
		case ' ':
			newLine++
			origLine++
		case '\\':
			// "\ No newline at end of file" marker, not a change
		}
	}
	return hunk
}

func cleanPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/dev/null" {
		return ""
	}
	p = strings.TrimPrefix(p, "a/")
	p = strings.TrimPrefix(p, "b/")
	return p
}
