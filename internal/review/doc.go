// Package review defines the issue and result model shared across the
// pipeline, along with the severity classifier and merger that reconciles
// rule-based and AI-based findings into one ordered, deduplicated result.
package review
