package redact

import "regexp"

const placeholder = "[REDACTED]"

// patterns are heuristics for secret material that must not leave the
// process inside an LLM payload.
var patterns = []*regexp.Regexp{
	// Assigned secrets and tokens
	regexp.MustCompile(`(?i)(api[_-]?key|secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`),
	// AWS access key IDs
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	// Bearer tokens
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`),
	// JWTs
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
	// Private key blocks
	regexp.MustCompile(`-----BEGIN\s+(RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`),
	// GitHub and OpenAI style keys
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
	regexp.MustCompile(`sk-[A-Za-z0-9_-]{20,}`),
}

// Apply replaces detected secrets in text with a placeholder. The rule
// engine still sees the original text; only the AI payload is masked.
func Apply(text string) string {
	out := text
	for _, p := range patterns {
		out = p.ReplaceAllString(out, placeholder)
	}
	return out
}
