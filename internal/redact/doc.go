// Package redact masks secret-looking values in diff text before it is
// embedded in an outbound LLM prompt.
package redact
