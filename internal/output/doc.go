// Package output renders review results as terminal text, JSON, or
// markdown suitable for a pull request comment.
package output
