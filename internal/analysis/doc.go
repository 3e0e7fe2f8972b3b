// Package analysis adapts a normalized diff into an LLM request, validates
// the structured response, and classifies failures as transient (retried
// with bounded exponential backoff) or terminal (fails fast and opens the
// circuit breaker).
package analysis
