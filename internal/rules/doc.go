// Package rules implements the deterministic precheck layer: fixed
// pattern-based rules evaluated over the added lines of a diff, each paired
// with a severity and message template. Rule evaluation is pure, ordered,
// and independent of the AI analysis layer.
package rules
