// Package gitdiff gathers local diffs from git for the one-shot CLI review
// mode.
package gitdiff
