// Package pipeline contains the review orchestrator: it sequences diff
// parsing, fingerprinting, the cache's single-owner computation, rule
// evaluation, AI analysis, and merging, degrading to rule-only results when
// the AI layer is unavailable.
package pipeline
