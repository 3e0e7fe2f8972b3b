// Reviewd automates code review by combining deterministic rule checks
// with LLM analysis.
//
// It runs as an HTTP service that reviews GitHub pull requests via webhook
// and accepts manual review submissions, or as a one-shot CLI over local
// git changes.
//
// Usage:
//
//	reviewd serve                      # run the HTTP service
//	reviewd review --staged            # review staged changes
//	reviewd review --range main..HEAD  # review a revision range
//	reviewd review patch.diff          # review a diff file
//	reviewd review --snippet -         # review code from stdin
package main
