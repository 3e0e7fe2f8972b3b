// Package github implements the source-control client contract over the
// GitHub REST API: fetching raw pull request diffs and posting review
// comments.
package github
