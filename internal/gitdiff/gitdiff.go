package gitdiff

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Unstaged returns the diff of the working tree against the index.
func Unstaged(ctx context.Context) (string, error) {
	return run(ctx, "diff")
}

// Staged returns the diff of the index against HEAD.
func Staged(ctx context.Context) (string, error) {
	return run(ctx, "diff", "--cached")
}

// Range returns the diff for a revision range such as "origin/main..HEAD".
func Range(ctx context.Context, revRange string) (string, error) {
	return run(ctx, "diff", revRange)
}

func run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return stdout.String(), nil
}
